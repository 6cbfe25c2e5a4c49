package persist

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nhle/todolist/internal/model"
)

// Kind names one of the two persisted collections.
type Kind string

const (
	KindTodos Kind = "todos"
	KindTags  Kind = "tags"
)

// Codec converts collections to and from bytes.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// SchemaChecker is implemented by codecs whose encoded form can be checked
// against a document schema before decoding.
type SchemaChecker interface {
	Check(kind Kind, data []byte) error
}

// NewCodec returns the codec registered under name.
func NewCodec(name string) (Codec, error) {
	switch name {
	case model.CodecJSON, "":
		return JSONCodec{}, nil
	case model.CodecMsgpack:
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

//go:embed schema/*.schema.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemas     map[Kind]*jsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[Kind]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true

		out := make(map[Kind]*jsonschema.Schema, 2)
		for _, kind := range []Kind{KindTodos, KindTags} {
			name := string(kind) + ".schema.json"
			raw, err := schemaFS.ReadFile("schema/" + name)
			if err != nil {
				schemasErr = fmt.Errorf("reading schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
				schemasErr = fmt.Errorf("adding schema %s: %w", name, err)
				return
			}
			schema, err := compiler.Compile(name)
			if err != nil {
				schemasErr = fmt.Errorf("compiling schema %s: %w", name, err)
				return
			}
			out[kind] = schema
		}
		schemas = out
	})
	return schemas, schemasErr
}

// JSONCodec encodes snapshots as indented JSON and validates incoming
// documents against the embedded snapshot schemas.
type JSONCodec struct{}

// Name returns "json".
func (JSONCodec) Name() string { return model.CodecJSON }

// Marshal encodes v as indented JSON.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Unmarshal decodes JSON data into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Check validates data against the schema for kind.
func (JSONCodec) Check(kind Kind, data []byte) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	schema, ok := all[kind]
	if !ok {
		return fmt.Errorf("no schema for %s", kind)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parsing %s snapshot: %w", kind, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("validating %s snapshot: %w", kind, err)
	}
	return nil
}

// MsgpackCodec encodes snapshots as MessagePack.
type MsgpackCodec struct{}

// Name returns "msgpack".
func (MsgpackCodec) Name() string { return model.CodecMsgpack }

// Marshal encodes v as MessagePack.
func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes MessagePack data into v.
func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
