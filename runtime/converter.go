package runtime

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ToStringValueMap flattens scalar map values to their query-string form.
// Whole floats are rendered without a fractional part (JSON numbers decode to float64).
func ToStringValueMap(m map[string]any) map[string]string {
	result := make(map[string]string, len(m))
	for key, value := range m {
		switch v := value.(type) {
		case string:
			result[key] = v
		case int:
			result[key] = strconv.Itoa(v)
		case int64:
			result[key] = strconv.FormatInt(v, 10)
		case float64:
			result[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			result[key] = strconv.FormatBool(v)
		case nil:
			result[key] = ""
		case fmt.Stringer:
			result[key] = v.String()
		default:
			result[key] = fmt.Sprintf("%v", v)
		}
	}
	return result
}

// DecodeInput converts task arguments into a typed input struct using json
// tags, after applying its `default` tags, and validates the result with its
// `validate` tags.
func DecodeInput(m map[string]any, target any) error {
	if err := ApplyDefaults(target); err != nil {
		return err
	}
	if err := mapToStruct(m, target); err != nil {
		return err
	}
	return validateStruct(target)
}

// mapToStruct converts a map[string]any to a struct using mapstructure.
// It uses json tags for field mapping and supports time.Duration and time.Time conversions.
func mapToStruct(m map[string]any, target any) error {
	return decodeWithTag(m, target, "json")
}

// mapToStructFromYAML is mapToStruct for config structs, which are tagged with yaml.
func mapToStructFromYAML(m map[string]any, target any) error {
	return decodeWithTag(m, target, "yaml")
}

func decodeWithTag(m map[string]any, target any, tag string) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: tag,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("failed to decode map to struct: %w", err)
	}

	return nil
}

// structToMap converts a struct to map[string]any using JSON round-trip.
// This respects json tags and properly handles nested structs.
func structToMap(s any) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal struct: %w", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to map: %w", err)
	}

	return result, nil
}
