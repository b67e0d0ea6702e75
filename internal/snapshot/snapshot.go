// Package snapshot converts question trees to and from the JSON snapshots kept by the local cache and the
// remote store.
package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/formtree"
	"github.com/myrjola/formtree/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	ErrMalformed = errors.NewSentinel("malformed snapshot")
	ErrNotArray  = fmt.Errorf("%w: not an array of questions", ErrMalformed)
)

const schemaURL = "schema://formtree/tree.schema.json"

//go:embed tree.schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, errors.Wrap(err, "parse tree schema")
	}
	c := jsonschema.NewCompiler()
	if err = c.AddResource(schemaURL, doc); err != nil {
		return nil, errors.Wrap(err, "add tree schema")
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, errors.Wrap(err, "compile tree schema")
	}
	return compiled, nil
})

// Encode serializes tree as a JSON array. An empty tree encodes as [].
func Encode(tree models.Tree) ([]byte, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return data, nil
}

// Decode parses and validates a snapshot. The snapshot must be a JSON array of questions matching the tree
// schema with unique non-empty ids. Every failure wraps ErrMalformed.
func Decode(data []byte) (models.Tree, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, "parse json", slog.String("cause", err.Error()))
	}
	if _, ok := doc.([]any); !ok {
		return nil, errors.Wrap(ErrNotArray, "decode snapshot", slog.String("kind", fmt.Sprintf("%T", doc)))
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err = schema.Validate(doc); err != nil {
		return nil, errors.Wrap(ErrMalformed, "validate schema", slog.String("cause", err.Error()))
	}

	var tree models.Tree
	if err = json.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(ErrMalformed, "unmarshal tree", slog.String("cause", err.Error()))
	}
	if tree == nil {
		tree = models.Tree{}
	}
	if err = formtree.Validate(tree); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return tree, nil
}
