package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/modecli/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML configuration files
// such as the one written by the init command.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// The document must be a mapping from flag name to value:
//   - Keys may use hyphens ("log-level") or underscores ("log_level")
//   - Numbers are passed to kong as strings
//   - Sequences are joined with commas, as for repeatable flags
//
// Example config file:
//
//	log-level: debug
//	log-pretty: false
//	policy: [option-duplicated=fail, map-duplicate-key=accept]
//
// A malformed file is logged and ignored. Command-line flags override config
// file values.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring malformed configuration",
				slog.Any("error", err))

			return config{}, nil
		}

		cfg := make(config, len(doc))
		for key, value := range doc {
			cfg[key] = flagValue(value)
		}

		return cfg, nil
	}
}

// config implements [kong.Resolver] for YAML configuration files.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
	} {
		if value, ok := r[name]; ok {
			return value, nil
		}
	}

	return nil, nil
}

// flagValue converts a decoded YAML value to a form kong can decode.
func flagValue(v any) any {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = fmt.Sprint(flagValue(item))
		}

		return strings.Join(items, ",")
	default:
		return v
	}
}
