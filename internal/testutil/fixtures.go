// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erraggy/modeltools/internal/fileutil"
	"github.com/erraggy/modeltools/model"
)

// NewSimpleModel creates a minimal topology: one cluster and one managed
// server that references it.
func NewSimpleModel() *model.Dict {
	return model.DictOf(
		"topology", model.DictOf(
			"Cluster", model.DictOf(
				"c1", model.NewDict(),
			),
			"Server", model.DictOf(
				"ms1", model.DictOf(
					"ListenPort", 7101,
					"Cluster", "c1",
				),
			),
		),
	)
}

// NewDetailedModel creates a model that touches every folder shape: single
// folders with a bound token, a typed provider family, a password, list and
// properties attributes, and cross-section references.
func NewDetailedModel() *model.Dict {
	return model.DictOf(
		"topology", model.DictOf(
			"AdminServerName", "admin",
			"SecurityConfiguration", model.DictOf(
				"Realm", model.DictOf(
					"myrealm", model.DictOf(
						"AuthenticationProvider", model.DictOf(
							"DefaultAuthenticator", model.DictOf(
								"DefaultAuthenticator", model.DictOf("ControlFlag", "SUFFICIENT"),
							),
						),
					),
				),
			),
			"Cluster", model.DictOf(
				"c1", model.DictOf(
					"DynamicServers", model.DictOf("ServerNamePrefix", "dyn-"),
				),
			),
			"Server", model.DictOf(
				"ms1", model.DictOf(
					"ListenPort", 7101,
					"Cluster", "c1",
					"SSL", model.DictOf("Enabled", true),
					"ServerStart", model.DictOf(
						"ClassPath", []any{"a.jar", "b.jar"},
						"PasswordEncrypted", "secret",
					),
				),
			),
		),
		"resources", model.DictOf(
			"MailSession", model.DictOf(
				"mail1", model.DictOf(
					"Properties", model.DictOf("mail.host", "smtp.example.com"),
					"Target", []any{"ms1"},
				),
			),
		),
	)
}

// WriteTempYAML writes a model as YAML to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempYAML(t *testing.T, doc *model.Dict) string {
	t.Helper()
	return writeTemp(t, doc, "model.yaml", model.FormatYAML)
}

// WriteTempJSON writes a model as JSON to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempJSON(t *testing.T, doc *model.Dict) string {
	t.Helper()
	return writeTemp(t, doc, "model.json", model.FormatJSON)
}

func writeTemp(t *testing.T, doc *model.Dict, name string, format model.Format) string {
	t.Helper()

	data, err := model.Marshal(doc, format)
	if err != nil {
		t.Fatalf("Failed to marshal model to %s: %v", format, err)
	}

	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, data, fileutil.OwnerReadWrite); err != nil {
		t.Fatalf("Failed to write temporary %s file: %v", format, err)
	}
	return tmpFile
}

// InstanceNames returns the instance names under section/folder at the top
// of doc, in document order. Deletion markers are excluded.
func InstanceNames(doc *model.Dict, section, folder string) []string {
	sec, ok := doc.Dict(section)
	if !ok {
		return nil
	}
	f, ok := sec.Dict(folder)
	if !ok {
		return nil
	}
	var names []string
	for _, k := range f.Keys() {
		if !model.IsDeletion(k) {
			names = append(names, k)
		}
	}
	return names
}
