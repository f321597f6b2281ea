package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingImagesConfig is returned when the bucket or directory is unset.
var ErrMissingImagesConfig = errors.New("missing images configuration")

type AppConfig struct {
	Images ImagesConfig
	Notify NotifyConfig
	AWS    AWSConfig
	Log    LogConfig
}

// ImagesConfig names where rendered charts are written. Neither field has a default.
type ImagesConfig struct {
	Bucket    string `env:"IMAGES_BUCKET" validate:"required"`
	Directory string `env:"IMAGES_DIRECTORY" validate:"required"`
}

type NotifyConfig struct {
	QueueURL string `env:"IMAGES_NOTIFY_QUEUE_URL" validate:"omitempty,url"`
}

// Enabled reports whether a publish notification should be sent after upload.
func (n NotifyConfig) Enabled() bool {
	return n.QueueURL != ""
}

type AWSConfig struct {
	Region string
}

// Load resolves credentials through the SDK default chain. An empty Region
// leaves region resolution to the SDK as well.
func (c AWSConfig) Load(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsConfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsConfig.WithRegion(c.Region))
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return cfg, nil
}

type LogConfig struct {
	Level string
}

// LoadConfig reads a local .env file when present, then the process
// environment. Missing images settings are not an error here: they are
// checked with ImagesConfig.Validate on the path that needs them.
func LoadConfig() *AppConfig {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LOG_LEVEL", "info")

	return &AppConfig{
		Images: ImagesConfig{
			Bucket:    v.GetString("IMAGES_BUCKET"),
			Directory: v.GetString("IMAGES_DIRECTORY"),
		},
		Notify: NotifyConfig{
			QueueURL: v.GetString("IMAGES_NOTIFY_QUEUE_URL"),
		},
		AWS: AWSConfig{
			Region: v.GetString("AWS_REGION"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report failures by environment variable name rather than Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Validate fails with ErrMissingImagesConfig naming every unset variable.
func (c ImagesConfig) Validate() error {
	return validateStruct(c, ErrMissingImagesConfig)
}

func (n NotifyConfig) Validate() error {
	return validateStruct(n, errors.New("invalid notify configuration"))
}

func validateStruct(s any, sentinel error) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}
	return fmt.Errorf("%w: %s", sentinel, strings.Join(names, ", "))
}
