package persist

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tasklist/internal/model"
)

// FormatVersion is the envelope version written by Encode.
const FormatVersion = 1

const (
	envelopeSchemaURL = "https://tasklist.local/schema/envelope.json"
	legacySchemaURL   = "https://tasklist.local/schema/legacy.json"
)

//go:embed schema/envelope.json
var envelopeSchemaJSON string

//go:embed schema/legacy.json
var legacySchemaJSON string

type envelope struct {
	Version int      `json:"version"`
	Items   []record `json:"items"`
}

type record struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// legacyRecord is one entry of the bare array the browser version kept in
// local storage; createdAt is unix milliseconds.
type legacyRecord struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Completed bool    `json:"completed"`
	CreatedAt float64 `json:"createdAt"`
}

// ValidationError points at the offending location inside the slot bytes.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

var (
	schemasOnce    sync.Once
	envelopeSchema *jsonschema.Schema
	legacySchema   *jsonschema.Schema
	schemasErr     error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	c.AssertFormat = true
	if err := c.AddResource(envelopeSchemaURL, strings.NewReader(envelopeSchemaJSON)); err != nil {
		schemasErr = fmt.Errorf("add envelope schema: %w", err)
		return
	}
	if err := c.AddResource(legacySchemaURL, strings.NewReader(legacySchemaJSON)); err != nil {
		schemasErr = fmt.Errorf("add legacy schema: %w", err)
		return
	}
	if envelopeSchema, schemasErr = c.Compile(envelopeSchemaURL); schemasErr != nil {
		return
	}
	legacySchema, schemasErr = c.Compile(legacySchemaURL)
}

// Encode writes c as a version 1 envelope with 2-space indentation.
func Encode(c model.Collection) ([]byte, error) {
	env := envelope{Version: FormatVersion, Items: make([]record, 0, len(c))}
	for _, it := range c {
		env.Items = append(env.Items, record{
			ID:        it.ID,
			Text:      it.Text,
			Completed: it.Completed,
			CreatedAt: it.CreatedAt,
		})
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal slot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode validates data and returns the collection it holds. It accepts
// the version 1 envelope and the legacy bare array. Blank items and
// repeated ids are dropped rather than rejected.
func Decode(data []byte) (model.Collection, error) {
	c, _, err := decode(data)
	return c, err
}

func decode(data []byte) (model.Collection, int, error) {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return nil, 0, fmt.Errorf("compile schema: %w", schemasErr)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, 0, errors.New("empty slot")
	}

	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, 0, fmt.Errorf("parse slot: %w", err)
	}

	legacy := trimmed[0] == '['
	sch := envelopeSchema
	if legacy {
		sch = legacySchema
	}
	if err := sch.Validate(doc); err != nil {
		return nil, 0, schemaError(err)
	}

	var items []model.Item
	if legacy {
		var recs []legacyRecord
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, 0, fmt.Errorf("parse legacy slot: %w", err)
		}
		items = make([]model.Item, 0, len(recs))
		for _, r := range recs {
			items = append(items, model.Item{
				ID:        r.ID,
				Text:      r.Text,
				Completed: r.Completed,
				CreatedAt: time.UnixMilli(int64(r.CreatedAt)).UTC(),
			})
		}
	} else {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, 0, fmt.Errorf("parse slot: %w", err)
		}
		items = make([]model.Item, 0, len(env.Items))
		for _, r := range env.Items {
			items = append(items, model.Item{
				ID:        r.ID,
				Text:      r.Text,
				Completed: r.Completed,
				CreatedAt: r.CreatedAt.UTC(),
			})
		}
	}

	out, dropped := normalize(items)
	return out, dropped, nil
}

// normalize trims text, drops blank items and keeps the first of any
// repeated id. It returns how many items were dropped.
func normalize(items []model.Item) (model.Collection, int) {
	out := make(model.Collection, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it.Text = strings.TrimSpace(it.Text)
		if it.Text == "" {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out, len(items) - len(out)
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	if len(errs) == 0 {
		return &ValidationError{Err: errors.New(ve.Message)}
	}
	return errors.Join(errs...)
}

func collectSchemaErrors(errs *[]error, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: jsonPointerToPath(ve.InstanceLocation),
			Err:  errors.New(ve.Message),
		})
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// jsonPointerToPath turns "/items/0/id" into "items[0].id".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
