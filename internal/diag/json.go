package diag

import (
	"strings"

	"github.com/tidwall/sjson"
)

// ToJSONLines renders every message as one JSON object per line, the
// `--json-diagnostics` feed described in SPEC_FULL.md's ambient stack
// section — a stable, parseable alternative to the human-facing
// caret-underline rendering above, for editors and CI to consume
// without scraping text.
func (cm *CompilationMessages) ToJSONLines() (string, error) {
	var sb strings.Builder
	for i, m := range cm.messages {
		line, err := jsonForMessage(m)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(line)
	}
	return sb.String(), nil
}

func jsonForMessage(m Message) (string, error) {
	json := "{}"
	var err error
	json, err = sjson.Set(json, "level", m.Level.String())
	if err != nil {
		return "", err
	}
	json, err = sjson.Set(json, "kind", string(m.Kind))
	if err != nil {
		return "", err
	}
	json, err = sjson.Set(json, "text", m.Text)
	if err != nil {
		return "", err
	}
	json, err = sjson.Set(json, "file", m.Loc.File)
	if err != nil {
		return "", err
	}
	json, err = sjson.Set(json, "line", m.Loc.Start.Line)
	if err != nil {
		return "", err
	}
	json, err = sjson.Set(json, "column", m.Loc.Start.Column)
	if err != nil {
		return "", err
	}
	for i, rel := range m.Related {
		json, err = sjson.Set(json, sjsonRelatedPath(i, "file"), rel.File)
		if err != nil {
			return "", err
		}
		json, err = sjson.Set(json, sjsonRelatedPath(i, "line"), rel.Start.Line)
		if err != nil {
			return "", err
		}
	}
	return json, nil
}

func sjsonRelatedPath(i int, field string) string {
	return "related." + itoa(i) + "." + field
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}
