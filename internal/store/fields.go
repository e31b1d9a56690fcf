package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/collectiones/api/internal/model"
	"gorm.io/datatypes"
)

// updatableFields lists the columns a partial update may touch, in the
// order history records are written. Unknown keys in an update payload
// are ignored. The generated URN and word count are derived, never set
// directly; the custom URN is caller-owned.
var updatableFields = []string{
	"author_named",
	"author",
	"author_group",
	"sect",
	"book",
	"chapter",
	"title_greek",
	"body_greek",
	"translation_title",
	"translation_body",
	"location",
	"word_count",
	"notes",
	"themes",
	"urn_custom",
}

func applyField(e *model.Entry, name string, value any) (oldValue, newValue string, err error) {
	switch name {
	case "author_named":
		return applyString(&e.AuthorNamed, name, value)
	case "author":
		return applyString(&e.Author, name, value)
	case "author_group":
		return applyString(&e.AuthorGroup, name, value)
	case "sect":
		return applyString(&e.Sect, name, value)
	case "book":
		return applyInt(&e.Book, name, value)
	case "chapter":
		return applyInt(&e.Chapter, name, value)
	case "title_greek":
		return applyString(&e.TitleGreek, name, value)
	case "body_greek":
		return applyString(&e.BodyGreek, name, value)
	case "translation_title":
		return applyString(&e.TranslationTitle, name, value)
	case "translation_body":
		return applyString(&e.TranslationBody, name, value)
	case "location":
		return applyString(&e.Location, name, value)
	case "word_count":
		return applyInt(&e.WordCount, name, value)
	case "notes":
		notes, ok := toStringSlice(value)
		if !ok {
			return "", "", &ValidationError{Field: name, Reason: "must be a list of strings"}
		}
		oldValue = strings.Join(e.Notes, "; ")
		e.Notes = notes
		return oldValue, strings.Join(notes, "; "), nil
	case "themes":
		themes, ok := toStringSlice(value)
		if !ok {
			return "", "", &ValidationError{Field: name, Reason: "must be a list of strings"}
		}
		raw, err := json.Marshal(themes)
		if err != nil {
			return "", "", &ValidationError{Field: name, Reason: err.Error()}
		}
		oldValue = string(e.Themes)
		e.Themes = datatypes.JSON(raw)
		return oldValue, string(raw), nil
	case "urn_custom":
		return applyString(&e.URNCustom, name, value)
	}
	return "", "", &ValidationError{Field: name, Reason: "not an updatable field"}
}

func applyString(target *string, name string, value any) (string, string, error) {
	s, ok := value.(string)
	if !ok {
		if value == nil {
			s = ""
		} else {
			return "", "", &ValidationError{Field: name, Reason: "must be a string"}
		}
	}
	oldValue := *target
	*target = s
	return oldValue, s, nil
}

func applyInt(target *int, name string, value any) (string, string, error) {
	n, ok := toInt(value)
	if !ok {
		return "", "", &ValidationError{Field: name, Reason: "must be an integer"}
	}
	oldValue := fmt.Sprintf("%d", *target)
	*target = n
	return oldValue, fmt.Sprintf("%d", n), nil
}

// toInt accepts the numeric shapes seen across JSON payloads and CSV
// decoding.
func toInt(value any) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
