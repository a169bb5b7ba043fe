package parser

import (
	"bytes"
	stderrors "errors" // Standard errors package
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/jsontyper/internal/errors" // Custom errors package
	"github.com/mcncl/jsontyper/internal/models"
	"sigs.k8s.io/yaml"
)

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation.
// Object keys keep their input order.
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	rootValue, err := decodeValue(decoder)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.IntermediateRepresentation{}, wrapDecodeError(err)
	}

	// Anything other than whitespace after the first value is rejected.
	if _, err := decoder.Token(); err == nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.IntermediateRepresentation{}, errors.NewParsingError("invalid trailing data after first JSON value", errors.ErrInvalidJSON)
	}

	return models.IntermediateRepresentation{Root: rootValue}, nil
}

// decodeValue reads one complete JSON value from the token stream.
func decodeValue(decoder *json.Decoder) (models.JSONValue, error) {
	tok, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		// string, json.Number, bool or nil
		return t, nil
	}
}

func decodeObject(decoder *json.Decoder) (models.JSONValue, error) {
	obj := models.NewJSONObject()
	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
		}
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		obj.Set(key, value)
	}
	if _, err := decoder.Token(); err != nil { // closing '}'
		return nil, unexpectedEOF(err)
	}
	return obj, nil
}

func decodeArray(decoder *json.Decoder) (models.JSONValue, error) {
	arr := models.JSONArray{}
	for decoder.More() {
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		arr = append(arr, value)
	}
	if _, err := decoder.Token(); err != nil { // closing ']'
		return nil, unexpectedEOF(err)
	}
	return arr, nil
}

// unexpectedEOF keeps a truncated document from being reported as empty input.
func unexpectedEOF(err error) error {
	if stderrors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func wrapDecodeError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError(fmt.Sprintf("failed to decode JSON: %v", err), errors.ErrInvalidJSON)
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseYAML converts a YAML document to JSON and parses the result.
// YAML mappings are converted through Go maps, so their keys come out sorted.
func ParseYAML(yamlString string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(yamlString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	jsonData, err := yaml.YAMLToJSON([]byte(yamlString))
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError(fmt.Sprintf("invalid YAML: %v", err), errors.ErrInvalidJSON)
	}
	return Parse(bytes.NewReader(jsonData))
}

// ReadFile reads an input file, rejecting missing and empty files.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}
