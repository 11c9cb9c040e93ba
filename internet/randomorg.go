package internet

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/vaultrand/prng/collector"
	"github.com/vaultrand/prng/config"
)

const (
	randomOrgHost  = "api.random.org"
	randomOrgURL   = "https://" + randomOrgHost + "/json-rpc/1/invoke"
	randomOrgBytes = 128
)

var randomOrgAPIKey config.StringOption

func init() {
	err := config.Register(&config.Option{
		Name:         "random.org API Key",
		Key:          "internet/randomorg_api_key",
		Description:  "API key for the random.org JSON-RPC service. The collector stays inactive without one.",
		OptType:      config.OptTypeString,
		DefaultValue: "",
	})
	if err != nil {
		panic(err)
	}
	randomOrgAPIKey = config.GetAsString("internet/randomorg_api_key", "")

	err = collector.RegisterKind(&collector.Kind{
		Name:           "randomorg",
		DefaultDelay:   15 * time.Minute,
		DefaultEnabled: false,
		Build: func() (collector.Source, error) {
			return NewRandomOrg(), nil
		},
	})
	if err != nil {
		panic(err)
	}
}

// RandomOrg fetches random bytes from the random.org JSON-RPC service. It
// is a block entropy source feeding the accumulator, fetched bits are never
// trusted as a seed on their own.
type RandomOrg struct {
	*service
}

// NewRandomOrg returns a new random.org source.
func NewRandomOrg() *RandomOrg {
	return &RandomOrg{
		service: newService(randomOrgHost),
	}
}

// Name implements collector.Source.
func (r *RandomOrg) Name() string {
	return "randomorg"
}

// IsOperational implements collector.Source.
func (r *RandomOrg) IsOperational() bool {
	return randomOrgAPIKey() != ""
}

// FetchBlock requests 128 random bytes from the service.
func (r *RandomOrg) FetchBlock() ([]byte, error) {
	request, err := buildRequest(randomOrgAPIKey())
	if err != nil {
		return nil, err
	}
	data, err := r.connectRPC(randomOrgURL, request)
	if err != nil {
		return nil, err
	}
	return parseResponse(data)
}

// buildRequest assembles the generateIntegers JSON-RPC call.
func buildRequest(apiKey string) ([]byte, error) {
	body := []byte(`{"jsonrpc":"2.0","method":"generateIntegers","id":"seed"}`)

	var err error
	for _, field := range []struct {
		path  string
		value interface{}
	}{
		{"params.apiKey", apiKey},
		{"params.n", randomOrgBytes},
		{"params.min", 0},
		{"params.max", 255},
	} {
		body, err = sjson.SetBytes(body, field.path, field.value)
		if err != nil {
			return nil, fmt.Errorf("randomorg: failed to build request: %w", err)
		}
	}
	return body, nil
}

// parseResponse extracts the random bytes from a JSON-RPC response.
func parseResponse(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("randomorg: response is not valid JSON")
	}

	// an explicit error wins over everything else
	if errMsg := gjson.GetBytes(data, "error.message"); errMsg.Exists() {
		return nil, fmt.Errorf("randomorg: service error: %s", errMsg.String())
	}

	values := gjson.GetBytes(data, "result.random.data")
	if !values.Exists() || !values.IsArray() {
		return nil, errors.New("randomorg: no data in response")
	}

	array := values.Array()
	if len(array) != randomOrgBytes {
		return nil, fmt.Errorf("randomorg: got %d values, want %d", len(array), randomOrgBytes)
	}

	bits := make([]byte, randomOrgBytes)
	for i, v := range array {
		if v.Type != gjson.Number {
			return nil, fmt.Errorf("randomorg: value at index %d is %s, not a number", i, v.Type)
		}
		n := v.Int()
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("randomorg: value %d at index %d is out of byte range", n, i)
		}
		bits[i] = byte(n)
	}
	return bits, nil
}
