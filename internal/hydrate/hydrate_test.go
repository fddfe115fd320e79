package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type serverSettings struct {
	Host    string        `json:"host"`
	Port    int           `json:"port"`
	Window  window        `json:"window"`
	Tags    []string      `json:"tags"`
	Extra   any           `json:"extra,omitempty"`
	Retries retrySettings `json:"retries"`
}

type window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type retrySettings struct {
	Max int `json:"max"`
}

func TestDecoderCases(t *testing.T) {
	cases := []struct {
		name      string
		input     map[string]any
		options   []DecoderOption[serverSettings]
		expect    serverSettings
		expectErr string
	}{
		{
			name:  "plain",
			input: map[string]any{"host": "localhost", "port": 8080, "retries": map[string]any{"max": 3}},
			expect: serverSettings{
				Host:    "localhost",
				Port:    8080,
				Retries: retrySettings{Max: 3},
			},
		},
		{
			name:    "pre hook splits window",
			input:   map[string]any{"window": "22:00 - 06:00"},
			options: []DecoderOption[serverSettings]{WithPreHook[serverSettings](windowPreHook)},
			expect:  serverSettings{Window: window{Start: "22:00", End: "06:00"}},
		},
		{
			name:      "pre hook failure",
			input:     map[string]any{"window": "broken"},
			options:   []DecoderOption[serverSettings]{WithPreHook[serverSettings](windowPreHook)},
			expectErr: "pre-hook for generation 2 failed",
		},
		{
			name:    "post hook tags generation",
			input:   map[string]any{"host": "db"},
			options: []DecoderOption[serverSettings]{WithPostHook[serverSettings](ensureTagPostHook)},
			expect:  serverSettings{Host: "db", Tags: []string{"layer-b:2"}},
		},
		{
			name:      "unknown field rejected",
			input:     map[string]any{"host": "db", "colour": "blue"},
			options:   []DecoderOption[serverSettings]{WithDisallowUnknownFields[serverSettings]()},
			expectErr: "unknown field",
		},
		{
			name:    "use number",
			input:   map[string]any{"extra": 12.5},
			options: []DecoderOption[serverSettings]{WithUseNumber[serverSettings]()},
			expect:  serverSettings{Extra: json.Number("12.5")},
		},
		{
			name:      "type mismatch",
			input:     map[string]any{"port": "eighty"},
			expectErr: "decode generation 2",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			decoder := NewDecoder[serverSettings](tc.options...)
			result, err := decoder.Decode(Context{LayerID: "layer-b", Generation: 2}, tc.input)

			if tc.expectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.expectErr)
				}
				if !strings.Contains(err.Error(), tc.expectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.expect, result) {
				t.Fatalf("decoded value mismatch:\nwant: %#v\n got: %#v", tc.expect, result)
			}
		})
	}
}

func TestDecoderRejectsNilPayload(t *testing.T) {
	_, err := NewDecoder[serverSettings]().Decode(Context{Generation: 1}, nil)
	if err == nil || !strings.Contains(err.Error(), "payload is nil") {
		t.Fatalf("expected nil payload error, got %v", err)
	}
}

func TestDecoderLeavesPayloadUntouched(t *testing.T) {
	payload := map[string]any{"window": "08:00-17:00"}
	decoder := NewDecoder[serverSettings](WithPreHook[serverSettings](windowPreHook))
	if _, err := decoder.Decode(Context{}, payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["window"] != "08:00-17:00" {
		t.Fatalf("payload mutated: %#v", payload)
	}
}

func TestPostHookErrorWraps(t *testing.T) {
	sentinel := errors.New("invalid port")
	decoder := NewDecoder[serverSettings](WithPostHook[serverSettings](func(_ Context, s *serverSettings) error {
		if s.Port == 0 {
			return sentinel
		}
		return nil
	}))
	_, err := decoder.Decode(Context{Generation: 4}, map[string]any{"host": "x"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func windowPreHook(_ Context, payload map[string]any) (map[string]any, error) {
	value, ok := payload["window"].(string)
	if !ok || value == "" {
		return payload, nil
	}
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid window %q", value)
	}
	payload["window"] = map[string]any{
		"start": strings.TrimSpace(parts[0]),
		"end":   strings.TrimSpace(parts[1]),
	}
	return payload, nil
}

func ensureTagPostHook(ctx Context, value *serverSettings) error {
	if value == nil {
		return errors.New("value is nil")
	}
	if len(value.Tags) > 0 {
		return nil
	}
	value.Tags = []string{fmt.Sprintf("%s:%d", ctx.LayerID, ctx.Generation)}
	return nil
}
