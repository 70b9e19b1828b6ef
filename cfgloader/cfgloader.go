// Package cfgloader loads and validates configuration at application start.
//
// A configuration struct maps YAML keys with `yaml` tags, declares defaults
// with `default` tags (github.com/creasty/defaults) and is validated with
// `validate` tags (github.com/go-playground/validator/v10). Fields tagged
// `mask:"true"` are hidden when the loaded config is printed (see package
// mask).
//
//	type Config struct {
//	    Logger  logger.Config  `yaml:"logger" validate:"required"`
//	    Command CommandConfig  `yaml:"command"`
//	    Token   string         `yaml:"token" mask:"true"`
//	}
package cfgloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rise-and-shine/rxcommand/logger"
)

const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"
)

// EnvVar names the variable selecting the config file.
const EnvVar = "ENVIRONMENT"

const (
	CodePointerConfig = "CONFIG_IS_POINTER"
	CodeNotFound      = "CONFIG_NOT_FOUND"
	CodeUnreadable    = "CONFIG_UNREADABLE"
	CodeMalformed     = "CONFIG_MALFORMED"
	CodeDefaults      = "CONFIG_DEFAULTS_FAILED"
	CodeInvalid       = "CONFIG_INVALID"
	CodeEnvironment   = "CONFIG_ENVIRONMENT_INVALID"
)

var environments = []string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}

// MustLoad loads ${dir}/${ENVIRONMENT}.yaml into T, where dir defaults to
// ./config. Variables from a .env file are loaded first and ${VAR}
// references in the file are expanded. The process exits if anything fails.
func MustLoad[T any](opts ...Option) T {
	o := buildOptions(opts)

	_ = godotenv.Load()

	env := o.environment
	if env == "" {
		env = os.Getenv(EnvVar)
	}
	if !slices.Contains(environments, env) {
		logger.Fatalx(errx.New(
			fmt.Sprintf("%s env variable is not set or invalid", EnvVar),
			errx.WithCode(CodeEnvironment),
			errx.WithDetails(errx.D{"value": env, "choices": strings.Join(environments, ",")}),
		))
	}

	config, err := Load[T](filepath.Join(o.dir, env+".yaml"))
	if err != nil {
		logger.Fatalx(errx.Wrap(err, errx.WithDetails(errx.D{"environment": env})))
	}

	if !o.silent {
		printConfig(config)
	}
	return config
}

// Load reads the YAML file at path into T, expands environment variables,
// applies defaults and validates the result.
func Load[T any](path string) (T, error) {
	var config T

	if reflect.TypeOf(config) != nil && reflect.TypeOf(config).Kind() == reflect.Ptr {
		return config, errx.New("config type must not be a pointer", errx.WithCode(CodePointerConfig))
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, errx.New("config file not found",
			errx.WithCode(CodeNotFound),
			errx.WithDetails(errx.D{"path": path}),
		)
	}
	if err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeUnreadable), errx.WithDetails(errx.D{"path": path}))
	}

	data = []byte(os.ExpandEnv(string(data)))

	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeMalformed), errx.WithDetails(errx.D{"path": path}))
	}

	if err = defaults.Set(&config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeDefaults))
	}

	if err = validate(&config); err != nil {
		return config, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}

	return config, nil
}

func validate(config any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errx.Wrap(err, errx.WithCode(CodeInvalid))
	}

	failed := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		failed = append(failed, fmt.Sprintf("%s: %s", fe.Namespace(), tag))
	}

	return errx.New("invalid config fields",
		errx.WithCode(CodeInvalid),
		errx.WithDetails(errx.D{"fields": strings.Join(failed, ", ")}),
	)
}
