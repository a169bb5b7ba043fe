package e2e_test

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"

	"github.com/mcncl/jsontyper/internal/server"
)

const (
	sampleJSON   = "../../testdata/samples/user.json"
	sampleGolden = "../../testdata/samples/user.bal"
)

// runCLI runs the jsontyper command with args, feeding stdin when non-empty.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../.."}, args...)...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestEndToEnd_GoldenSample converts the sample file and compares with the
// checked-in declarations
func TestEndToEnd_GoldenSample(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "user.bal")

	_, stderr, err := runCLI(t, "", "-i", sampleJSON, "-o", outputFile, "-r", "UserData")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	generated, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	golden, err := os.ReadFile(sampleGolden)
	require.NoError(t, err)

	assert.Equal(t, string(golden), string(generated))
	assert.Contains(t, stderr, "Generated types written to")
}

// TestEndToEnd_ComplexNestedStructures tests the application with complex nested JSON structures
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	jsonContent := `{
		"id": 12345,
		"uuid": "550e8400-e29b-41d4-a716-446655440000",
		"created_at": "2023-05-20T14:56:23Z",
		"updated_at": null,
		"config": {
			"enabled": true,
			"timeout_seconds": 30,
			"retry_count": 3,
			"features": ["logging", "metrics", "alerting"],
			"rate_limits": {
				"per_second": 100,
				"per_minute": 1000,
				"burst": 150
			},
			"environments": {
				"development": {
					"debug": true,
					"log_level": "debug"
				},
				"production": {
					"debug": false,
					"log_level": "info"
				}
			}
		},
		"users": [
			{
				"id": 1,
				"name": "Alice",
				"roles": ["admin", "user"],
				"metadata": {
					"last_login": "2023-05-19T10:30:00Z",
					"login_count": 42
				}
			},
			{
				"id": 2,
				"name": "Bob",
				"roles": ["user"],
				"metadata": {
					"last_login": "2023-05-18T09:15:00Z",
					"login_count": 17
				}
			}
		],
		"stats": {
			"requests": 1234567,
			"errors": 123,
			"success_rate": 0.9999,
			"response_times": [0.045, 0.067, 0.032, 0.051]
		},
		"active": true
	}`

	output, stderr, err := runCLI(t, jsonContent, "--name-style", "pascal")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	expected := []string{
		"type Features string[];",
		"type RateLimits record {| int per_second; int per_minute; int burst; |};",
		"type Development record {| boolean debug; string log_level; |};",
		"type Production record {| boolean debug; string log_level; |};",
		"type Environments record {| Development development; Production production; |};",
		"type Config record {| boolean enabled; int timeout_seconds; int retry_count; Features features; RateLimits rate_limits; Environments environments; |};",
		"type Roles string[];",
		"type Metadata record {| string last_login; int login_count; |};",
		"type UsersItem record {| int id; string name; Roles roles; Metadata metadata; |};",
		"type Users UsersItem[];",
		"type ResponseTimes decimal[];",
		"type Stats record {| int requests; int errors; decimal success_rate; ResponseTimes response_times; |};",
		"type NewRecord record {| int id; string uuid; string created_at; json updated_at; Config config; Users users; Stats stats; boolean active; |};",
	}
	assert.Equal(t, strings.Join(expected, "\n\n")+"\n", output)
}

// TestEndToEnd_HeterogeneousArrays tests the application with arrays containing mixed types
func TestEndToEnd_HeterogeneousArrays(t *testing.T) {
	jsonContent := `{
		"mixed_array": [1, "string", true, null, {"nested": "object"}, [1, 2, 3]],
		"mixed_objects": [
			{"type": "user", "id": 1, "name": "Alice"},
			{"type": "group", "id": 2, "members": 5},
			{"type": "user", "id": 3, "name": "Bob", "active": true}
		]
	}`

	output, stderr, err := runCLI(t, jsonContent, "--name-style", "pascal")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Contains(t, output, "type MixedArrayItem record {| string nested; |};")
	assert.Contains(t, output, "type MixedArray (int|string|boolean|json|MixedArrayItem|int[])[];")
	assert.Contains(t, output, "type MixedObjectsItem record {| string 'type; int id; string name?; int members?; boolean active?; |};")
	assert.Contains(t, output, "type MixedObjects MixedObjectsItem[];")
	assert.Contains(t, output, "type NewRecord record {| MixedArray mixed_array; MixedObjects mixed_objects; |};")
}

// TestEndToEnd_OutputOptions covers the flags that change the rendering
func TestEndToEnd_OutputOptions(t *testing.T) {
	input := `{"user": {"id": 1, "nickname": null}}`

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "open records",
			args:     []string{"--open"},
			expected: "type User record { int id; json nickname; json...; };\n\ntype NewRecord record { User user; json...; };\n",
		},
		{
			name:     "null as optional",
			args:     []string{"-n"},
			expected: "type User record {| int id; json nickname?; |};\n\ntype NewRecord record {| User user; |};\n",
		},
		{
			name:     "inline with prefix",
			args:     []string{"--inline", "-p", "Api", "-r", "Payload"},
			expected: "type Payload record {| record {| int id; json nickname; |} user; |};\n",
		},
		{
			name:     "prefix",
			args:     []string{"-p", "Api"},
			expected: "type ApiUser record {| int id; json nickname; |};\n\ntype NewRecord record {| ApiUser user; |};\n",
		},
		{
			name:     "existing names",
			args:     []string{"-e", "User", "-e", "NewRecord"},
			expected: "type User2 record {| int id; json nickname; |};\n\ntype NewRecord2 record {| User2 user; |};\n",
		},
		{
			name:     "multiline",
			args:     []string{"--multiline", "-r", "Root"},
			expected: "type User record {|\n    int id;\n    json nickname;\n|};\n\ntype Root record {|\n    User user;\n|};\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, stderr, err := runCLI(t, input, tt.args...)
			require.NoError(t, err, "CLI command failed: %s", stderr)
			assert.Equal(t, tt.expected, output)
		})
	}
}

// TestEndToEnd_JSONSchema checks the schema output is a usable document
func TestEndToEnd_JSONSchema(t *testing.T) {
	output, stderr, err := runCLI(t, "", "-i", sampleJSON, "-f", "jsonschema", "-r", "UserData")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &doc))
	assert.Equal(t, "https://json-schema.org/draft/2020-12/schema", doc["$schema"])
	assert.Equal(t, "#/$defs/UserData", doc["$ref"])

	defs, ok := doc["$defs"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, defs, 6)
	assert.Contains(t, defs, "Social")
}

// TestEndToEnd_ConfigFile checks settings are read from the config file
func TestEndToEnd_ConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "jsontyper.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("root_name: Settings\nrecords:\n  closed: false\n"), 0o644))

	output, stderr, err := runCLI(t, `{"a": 1}`, "-c", configPath)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, "type Settings record { int a; json...; };\n", output)
}

// TestEndToEnd_EdgeCases tests various edge cases
func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		expected string
		isError  bool
	}{
		{
			name:     "EmptyObject",
			json:     `{}`,
			expected: "type NewRecord record {||};",
		},
		{
			name:     "EmptyArray",
			json:     `[]`,
			expected: "type NewRecord json[];",
		},
		{
			name:     "SingleValue",
			json:     `"just a string"`,
			expected: "root must be an object or an array",
			isError:  true,
		},
		{
			name:     "SingleNumber",
			json:     `42`,
			expected: "root must be an object or an array",
			isError:  true,
		},
		{
			name:     "SingleBoolean",
			json:     `true`,
			expected: "root must be an object or an array",
			isError:  true,
		},
		{
			name:     "SingleNull",
			json:     `null`,
			expected: "root must be an object or an array",
			isError:  true,
		},
		{
			name:     "InvalidJSON",
			json:     `{"name": "Invalid JSON",}`,
			expected: "JSON parsing error",
			isError:  true,
		},
		{
			name:     "DeeplyNestedObject",
			json:     `{"level1":{"level2":{"level3":{"level4":{"level5":{"value":42}}}}}}`,
			expected: "type Level5 record {| int value; |};",
		},
		{
			name:     "DeeplyNestedArray",
			json:     `[[[[[[42]]]]]]`,
			expected: "type NewRecord int[][][][][][];",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, tc.json)

			if tc.isError {
				assert.Error(t, err, "Expected an error for %s", tc.name)
				assert.Contains(t, stderr, tc.expected)
				assert.Empty(t, stdout)
			} else {
				assert.NoError(t, err, "Unexpected error for %s: %s", tc.name, stderr)
				assert.Contains(t, stdout, tc.expected, "Expected output not found for %s", tc.name)
			}
		})
	}
}

func TestEndToEnd_Version(t *testing.T) {
	output, _, err := runCLI(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, output, "0.1.0")
}

func TestEndToEnd_Help(t *testing.T) {
	output, _, err := runCLI(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "jsontyper")
	assert.Contains(t, output, "serve")

	output, _, err = runCLI(t, "", "convert", "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "--null-as-optional")
	assert.Contains(t, output, "--existing-name")
}

// h2cClient speaks cleartext HTTP/2 only.
func h2cClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
}

func postConvert(t *testing.T, client *http.Client, url string, req server.ConvertRequest) (*http.Response, server.ConvertResponse) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := client.Post(url+server.ConvertPath, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var out server.ConvertResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

// TestEndToEnd_Service converts the sample over HTTP/2 and feeds the result
// back as existing types
func TestEndToEnd_Service(t *testing.T) {
	handler, err := server.NewHandler(16)
	require.NoError(t, err)
	ts := httptest.NewServer(server.New("", handler).Handler())
	defer ts.Close()

	sample, err := os.ReadFile(sampleJSON)
	require.NoError(t, err)
	golden, err := os.ReadFile(sampleGolden)
	require.NoError(t, err)

	client := h2cClient()
	resp, first := postConvert(t, client, ts.URL, server.ConvertRequest{
		JSONString: string(sample),
		RecordName: "UserData",
		IsClosed:   true,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, resp.ProtoMajor)
	assert.NotEmpty(t, resp.Header.Get(server.RequestIDHeader))

	texts := make([]string, len(first.Types))
	existing := make(map[string]string, len(first.Types))
	for i, decl := range first.Types {
		texts[i] = decl.Type
		existing[decl.Name] = decl.Type
	}
	assert.Equal(t, string(golden), strings.Join(texts, "\n\n")+"\n")

	_, second := postConvert(t, client, ts.URL, server.ConvertRequest{
		JSONString:    string(sample),
		RecordName:    "UserData",
		IsClosed:      true,
		ExistingTypes: existing,
	})
	assert.Equal(t, first.Types, second.Types)
}

// generateLargeJSON generates a large JSON array with the specified number of items
func generateLargeJSON(t testing.TB, itemCount int) string {
	// Seed random for reproducible results
	rng := rand.New(rand.NewSource(42))

	items := make([]map[string]interface{}, itemCount)
	for i := 0; i < itemCount; i++ {
		items[i] = map[string]interface{}{
			"id":          i + 1,
			"guid":        fmt.Sprintf("%x-%x-%x", rng.Uint32(), rng.Uint32()&0xffff, rng.Uint32()),
			"name":        fmt.Sprintf("Item %d", i+1),
			"description": fmt.Sprintf("This is item number %d in the test dataset", i+1),
			"created_at":  time.Now().Add(-time.Duration(rng.Intn(10000)) * time.Hour).Format(time.RFC3339),
			"price":       rng.Float64() * 1000,
			"quantity":    rng.Intn(100),
			"active":      rng.Intn(2) == 1,
			"tags":        []string{"tag1", "tag2", "tag3"}[0 : rng.Intn(3)+1],
			"metadata": map[string]interface{}{
				"source":    "test",
				"priority":  rng.Intn(5) + 1,
				"processed": rng.Intn(2) == 1,
				"score":     rng.Float64(),
			},
		}
	}

	jsonData, err := json.MarshalIndent(items, "", "  ")
	require.NoError(t, err)
	return string(jsonData)
}
