// Package docs holds the cfl user manual.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// Index is the topic listing all the others.
const Index = "readme"

// GetTopic returns the content of a documentation topic. The "*" topic is
// every topic concatenated.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		return GetTopics(AllTopics()...)
	}
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics returns the content of multiple documentation topics concatenated together.
func GetTopics(topics ...string) (string, error) {
	var b strings.Builder
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// AllTopics returns the sorted names of all topics but the index.
func AllTopics() []string {
	files, _ := fs.Glob(docs, "*.md")
	topics := make([]string, 0, len(files))
	for _, f := range files {
		if name := strings.TrimSuffix(f, path.Ext(f)); name != Index {
			topics = append(topics, name)
		}
	}
	slices.Sort(topics)
	return topics
}
