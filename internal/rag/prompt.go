package rag

import "github.com/tmc/langchaingo/prompts"

const secondBrainTemplate = `You are an intelligent "Second Brain" AI Assistant Agent.
You have access to the user's personal notes.

Here is the context retrieved from the notes.
{{.context}}

Question: {{.question}}

Instructions:
- Answer the question using ONLY the context provided above.
- If the context doesn't contain the answer, admit that you do not know based on the notes.
- Cite the source (filename) if available in the context.`

func newPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(secondBrainTemplate, []string{"context", "question"})
}
