package utils

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var specialCharacters = regexp.MustCompile(`[@_!#$%^&*()<>?/\\|}{~:\s'"+=,;\[\]]`)

// IsEmpty checks if a string is empty.
func IsEmpty(s string) bool {
	return s == ""
}

// HasSpecialCharacters reports whether a username is empty or contains characters
// that are not accepted as store keys.
func HasSpecialCharacters(s string) bool {
	return IsEmpty(s) || specialCharacters.MatchString(s)
}

// NormalizeUsername lowercases and trims a username; store keys are always lowercase.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func GetTraceID(c *gin.Context) (string, error) {
	traceID := c.GetString(pkg.TraceId)
	if IsEmpty(traceID) {
		return "", errors.New("trace id is empty")
	}
	return traceID, nil
}

// GetEnv reads the is-test header. A missing header selects production.
func GetEnv(c *gin.Context) (pkg.Env, error) {
	raw := strings.TrimSpace(c.GetHeader(pkg.HeaderIsTest))
	if IsEmpty(raw) {
		return pkg.EnvProduction, nil
	}
	isTest, err := strconv.ParseBool(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s header %q: %w", pkg.HeaderIsTest, raw, err)
	}
	return pkg.EnvFromFlag(isTest), nil
}

// ParseStructEnv binds env vars to struct fields using a mapstructure tag
func ParseStructEnv(cfg interface{}) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if IsEmpty(tag) {
			continue
		}
		if err := viper.BindEnv(tag); err != nil {
			return err
		}
	}
	return viper.Unmarshal(cfg)
}

// FormatConfigErrors logs every failed validation rule and returns a single error naming the failed keys.
// Values are never logged; configs carry secrets.
func FormatConfigErrors(logger *zap.Logger, err error, cfg interface{}) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	t := reflect.Indirect(reflect.ValueOf(cfg)).Type()
	keys := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fe.Field()
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if tag := f.Tag.Get("mapstructure"); !IsEmpty(tag) {
				key = tag
			}
		}
		logger.Error("invalid_config_value",
			zap.String("key", key),
			zap.String("rule", fe.Tag()),
			zap.String("param", fe.Param()))
		keys = append(keys, key)
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(keys, ", "))
}

// ParseRedisURL extracts host:port, password and DB from redis:// or rediss:// URL.
func ParseRedisURL(s string) (addr, password string, db int, err error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", "", 0, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return "", "", 0, fmt.Errorf("scheme must be redis or rediss, got %q", u.Scheme)
	}
	addr = u.Host
	if IsEmpty(addr) {
		return "", "", 0, fmt.Errorf("missing host in Redis URL")
	}
	if u.User != nil {
		password, _ = u.User.Password()
	}
	if len(u.Path) > 1 {
		db, err = strconv.Atoi(strings.TrimPrefix(u.Path, "/"))
		if err != nil {
			return "", "", 0, fmt.Errorf("invalid Redis DB index %q: %w", u.Path, err)
		}
	}
	return addr, password, db, nil
}
