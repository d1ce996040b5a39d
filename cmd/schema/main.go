// Command schema emits JSON schemas for the relay wire protocol and the
// geometry snapshot document, for the map-editor collaborator to validate
// against.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/c42705/stargety-oasis-sub005/internal/proto"
	"github.com/c42705/stargety-oasis-sub005/internal/world"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write schemas into")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schemas := map[string]*jsonschema.Schema{
		"client-envelope.schema.json": buildSchema(new(proto.ClientEnvelope),
			"Oasis Relay Client Envelope", "Messages a client sends to the relay"),
		"server-envelope.schema.json": buildSchema(new(proto.ServerEnvelope),
			"Oasis Relay Server Envelope", "Messages the relay sends to clients"),
		"world-snapshot.schema.json": buildSchema(new(world.Snapshot),
			"Oasis World Geometry Snapshot", "Full geometry document produced by the map editor"),
	}

	for name, schema := range schemas {
		if err := writeSchema(filepath.Join(outDir, name), schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func buildSchema(v any, title, description string) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(v)
	schema.Title = title
	schema.Description = description
	return schema
}

func writeSchema(path string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
