package ingest

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Note is one markdown file from the vault.
type Note struct {
	// Source is the vault-relative, slash-separated path.
	Source string
	Title  string
	Tags   []string
	Body   string
}

type frontMatter struct {
	Title string `yaml:"title"`
	Tags  any    `yaml:"tags"`
}

var fence = []byte("---")

// ParseNote splits optional YAML front matter from the body. Without a
// title in front matter the file name (minus .md) is used. A malformed
// header is returned as an error alongside a note whose body is the whole file.
func ParseNote(source string, data []byte) (Note, error) {
	note := Note{
		Source: source,
		Title:  strings.TrimSuffix(path.Base(source), path.Ext(source)),
		Body:   string(data),
	}

	header, body, ok := splitFrontMatter(data)
	if !ok {
		return note, nil
	}

	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return note, fmt.Errorf("parsing front matter of %s: %w", source, err)
	}

	if t := strings.TrimSpace(fm.Title); t != "" {
		note.Title = t
	}
	note.Tags = normaliseTags(fm.Tags)
	note.Body = string(body)
	return note, nil
}

// splitFrontMatter returns the YAML between a leading "---" line and the
// next "---" line, and everything after it.
func splitFrontMatter(data []byte) (header, body []byte, ok bool) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	first, rest, found := bytes.Cut(data, []byte("\n"))
	if !found || !bytes.Equal(bytes.TrimSpace(first), fence) {
		return nil, nil, false
	}

	offset := 0
	for offset <= len(rest) {
		line, after, more := bytes.Cut(rest[offset:], []byte("\n"))
		if bytes.Equal(bytes.TrimSpace(line), fence) {
			header = rest[:offset]
			if more {
				body = after
			}
			return header, body, true
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return nil, nil, false
}

// normaliseTags accepts a YAML list or a comma/space separated string.
// A leading '#' is dropped.
func normaliseTags(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ' ' })
	case []any:
		for _, item := range t {
			if item != nil {
				raw = append(raw, fmt.Sprint(item))
			}
		}
	}

	var tags []string
	for _, tag := range raw {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
