package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iancoleman/orderedmap"
	"github.com/invopop/jsonschema"

	"rust-rush/server/internal/net/proto"
)

// manifestTypes lists every tagged wire type in protocol order. The
// manifest records each type's property order so client codegen and
// reviewers can diff field layout changes.
var manifestTypes = []struct {
	name  string
	value any
}{
	{"ClientMessage", proto.ClientMessage{}},
	{"PlaceTowerPayload", proto.PlaceTowerPayload{}},
	{"RemoveTowerPayload", proto.RemoveTowerPayload{}},
	{"SpawnEnemyPayload", proto.SpawnEnemyPayload{}},
	{"PauseGamePayload", proto.PauseGamePayload{}},
	{"GameStateV1", proto.GameStateV1{}},
	{"TowerV1", proto.TowerV1{}},
	{"EnemyV1", proto.EnemyV1{}},
	{"ProjectileV1", proto.ProjectileV1{}},
	{"MuzzleFlashV1", proto.MuzzleFlashV1{}},
	{"ExplosionV1", proto.ExplosionV1{}},
	{"PositionV1", proto.PositionV1{}},
}

func main() {
	var outPath string
	var manifestPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.StringVar(&manifestPath, "manifest", "", "optional path to write the property-order manifest")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schema := buildSchema()
	if err := writeArtifact(outPath, schema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}

	if manifestPath != "" {
		manifest, err := buildManifest()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to build manifest: %v\n", err)
			os.Exit(1)
		}
		if err := writeArtifact(manifestPath, manifest); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write manifest: %v\n", err)
			os.Exit(1)
		}
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(proto.GameStateV1))
	schema.Title = "Rust Rush Game State"
	schema.Description = "Validates the payload.state object carried by game_state frames"
	return schema
}

// buildManifest walks the reflected Properties map of every wire type and
// records its keys in declaration order.
func buildManifest() (*orderedmap.OrderedMap, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	manifest := orderedmap.New()
	for _, entry := range manifestTypes {
		schema := reflector.Reflect(entry.value)
		if schema == nil || schema.Properties == nil {
			return nil, fmt.Errorf("reflect %s: no properties", entry.name)
		}
		manifest.Set(entry.name, schema.Properties.Keys())
	}
	return manifest, nil
}

func writeArtifact(outPath string, artifact any) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp artifact: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}

	return nil
}
