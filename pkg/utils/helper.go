package utils

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

var jsonpEnvelope = regexp.MustCompile(`^[^(]*\((.*)\)$`)

// GetJSONFromJSONP strips the callback wrapper from a JSONP response and
// returns the inner JSON text. The callback name is arbitrary. Returns ""
// when the input is not shaped like name(payload); callers treat that as a
// decode failure rather than an error.
func GetJSONFromJSONP(input string) string {
	if input == "" {
		return ""
	}
	m := jsonpEnvelope.FindStringSubmatch(input)
	if m == nil {
		return ""
	}
	return m[1]
}

// NewTempSUID returns a fresh correlation token attached to every
// authenticated request.
func NewTempSUID() string {
	return uuid.NewString()
}

// RandomDuration picks a duration in [min, max). Falls back to min when the
// range is empty or the random source fails.
func RandomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	if err != nil {
		return min
	}
	return min + time.Duration(val.Int64())
}

func EncodeURLParams(params interface{}) (string, error) {
	v, err := query.Values(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode url param: %w", err)
	}
	return v.Encode(), nil
}

func BeautifyJSON(data []byte) string {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return string(data)
	}
	pretty, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(pretty)
}

func FormatObject(obj interface{}) (string, error) {
	loggableMap := make(map[string]interface{})

	v := reflect.ValueOf(obj)

	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		jsonOutput, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return "", err
		}
		return string(jsonOutput), nil
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Func {
			loggableMap[fieldType.Name] = "<function>"
			continue
		}

		if field.CanInterface() {
			loggableMap[fieldType.Name] = field.Interface()
		}
	}

	jsonOutput, err := json.MarshalIndent(loggableMap, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonOutput), nil
}

func TruncateForLog(value string, length int) string {
	if length <= 0 || len(value) <= length {
		return value
	}
	return value[:length]
}
