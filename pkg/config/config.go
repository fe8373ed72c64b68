package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

var durationType = reflect.TypeOf(time.Duration(0))

// ErrInvalidYAML wraps YAML parse failures from GetConfig.
var ErrInvalidYAML = errors.New("failed to unmarshal YAML")

// Validator interface allows config structs to implement custom validation logic.
// If a config struct implements this interface, validation will be automatically
// called after loading configuration from files and environment variables.
type Validator interface {
	Validate() error
}

// setField parses raw into field according to the field's kind.
// Comma-separated values are accepted for string slices.
func setField(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to duration: %w", raw, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to convert %s to int: %w", raw, err)
		}
		field.SetInt(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to convert %s to float: %w", raw, err)
		}
		field.SetFloat(v)
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to bool: %w", raw, err)
		}
		field.SetBool(v)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		values := strings.Split(raw, ",")
		slice := reflect.MakeSlice(field.Type(), len(values), len(values))
		for i, v := range values {
			slice.Index(i).SetString(strings.TrimSpace(v))
		}
		field.Set(slice)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

// applyEnv copies non-empty env values into tagged fields.
func applyEnv(val reflect.Value, typeOfT reflect.Type) error {
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := applyEnv(field, fieldType.Type); err != nil {
				return err
			}
			continue
		}

		tag := fieldType.Tag.Get("env")
		if tag == "" {
			continue
		}
		envVal := os.Getenv(tag)
		if envVal == "" {
			continue
		}
		if err := setField(field, envVal); err != nil {
			return fmt.Errorf("env %s: %w", tag, err)
		}
	}
	return nil
}

// applyDefaults fills zero-valued fields from their default tag. It runs before
// YAML and env so that an explicit false or 0 from either source is kept.
func applyDefaults(val reflect.Value, typeOfT reflect.Type) error {
	var result error
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := applyDefaults(field, fieldType.Type); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}

		defaultTag := fieldType.Tag.Get("default")
		if defaultTag == "" || !field.IsZero() {
			continue
		}
		if err := setField(field, defaultTag); err != nil {
			result = multierror.Append(result, fmt.Errorf("default for %s: %w", fieldType.Name, err))
		}
	}
	return result
}

// checkRequired collects every zero-valued required field without a default
// into a single multierror.
func checkRequired(val reflect.Value, typeOfT reflect.Type) error {
	var result error
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := checkRequired(field, fieldType.Type); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}

		requiredTag := strings.ToLower(fieldType.Tag.Get("required"))
		required := (requiredTag == "true" || requiredTag == "1") && fieldType.Tag.Get("default") == ""
		if required && field.IsZero() {
			result = multierror.Append(result, fmt.Errorf("required field env:%s / yaml:%s is missing",
				fieldType.Tag.Get("env"), fieldType.Tag.Get("yaml")))
		}
	}
	return result
}

// load fills dest in precedence order: defaults, then the optional YAML
// document, then env vars. Required fields and Validate run last.
func load[T any](dest *T, yamlDoc []byte) error {
	val := reflect.ValueOf(dest).Elem()
	typeOfT := val.Type()

	if err := applyDefaults(val, typeOfT); err != nil {
		return err
	}
	if yamlDoc != nil {
		if err := yaml.Unmarshal(yamlDoc, dest); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidYAML, err)
		}
	}
	if err := applyEnv(val, typeOfT); err != nil {
		return err
	}
	if err := checkRequired(val, typeOfT); err != nil {
		var zero T
		*dest = zero
		return err
	}

	return validate(dest)
}

// validate runs custom validation if *T (or T) implements Validator.
func validate[T any](dest *T) error {
	if v, ok := any(dest).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

// GetConfigFromEnvVars loads configuration from environment variables only.
// It processes struct tags: env, default, required.
//
//	var cfg MyConfig
//	err := GetConfigFromEnvVars(&cfg)
func GetConfigFromEnvVars[T any](dest *T) error {
	return load(dest, nil)
}

// GetConfig loads defaults, then a YAML file, then overlays environment variables.
// ${VAR} references inside the file are expanded from the environment before parsing.
// If filepath is empty, only environment variables are used.
// If allowFileErrors is true, file read/parse errors fall back to env vars only.
func GetConfig[T any](dest *T, filepath string, allowFileErrors bool) error {
	if filepath == "" {
		return GetConfigFromEnvVars(dest)
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	err = load(dest, []byte(os.ExpandEnv(string(data))))
	if err != nil && allowFileErrors && errors.Is(err, ErrInvalidYAML) {
		var zero T
		*dest = zero
		return GetConfigFromEnvVars(dest)
	}
	return err
}
