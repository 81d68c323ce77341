package vault

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Letter is a weekly reflection as written to disk
type Letter struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	ForDate string `yaml:"for_date"`
	Owner   string `yaml:"owner"`
	Entries int    `yaml:"entries"`
	Outcome string `yaml:"outcome"`
	Created string `yaml:"created"`

	Content string `yaml:"-"`
}

const frontmatterFence = "---\n"

// WriteWeeklyLetter writes Letters/Weekly/<for_date>-<owner>.md and returns
// the path relative to the vault
func (v *Vault) WriteWeeklyLetter(letter Letter) (string, error) {
	if letter.ForDate == "" {
		return "", fmt.Errorf("letter %s has no date", letter.ID)
	}
	letter.Type = "weekly"

	relPath := filepath.Join("Letters", "Weekly", fmt.Sprintf("%s-%s.md", letter.ForDate, slugify(letter.Owner)))

	meta, err := yaml.Marshal(letter)
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterFence)
	buf.Write(meta)
	buf.WriteString(frontmatterFence)
	buf.WriteString("\n")
	buf.WriteString(letter.Content)
	buf.WriteString("\n")

	if err := WriteFileAtomic(filepath.Join(v.basePath, relPath), buf.Bytes()); err != nil {
		return "", fmt.Errorf("writing letter: %w", err)
	}
	return relPath, nil
}

// ReadLetter reads a letter written by WriteWeeklyLetter
func (v *Vault) ReadLetter(relPath string) (Letter, error) {
	raw, err := os.ReadFile(filepath.Join(v.basePath, relPath))
	if err != nil {
		return Letter{}, fmt.Errorf("reading letter: %w", err)
	}
	return parseLetter(string(raw))
}

func parseLetter(raw string) (Letter, error) {
	var l Letter
	if !strings.HasPrefix(raw, frontmatterFence) {
		l.Content = strings.TrimSpace(raw)
		return l, nil
	}

	meta, body, ok := strings.Cut(raw[len(frontmatterFence):], "\n"+frontmatterFence)
	if !ok {
		return l, fmt.Errorf("unterminated frontmatter")
	}
	if err := yaml.Unmarshal([]byte(meta), &l); err != nil {
		return l, fmt.Errorf("decoding frontmatter: %w", err)
	}
	l.Content = strings.TrimSpace(body)
	return l, nil
}
