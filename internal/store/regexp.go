package store

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"modernc.org/sqlite"
)

// regexCacheSize bounds the compiled patterns kept across searches.
const regexCacheSize = 256

var (
	regexpOnce sync.Once
	regexpErr  error
	regexCache = mustLRU(regexCacheSize)
)

func mustLRU(size int) *lru.Cache[string, *regexp.Regexp] {
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		panic(err)
	}
	return c
}

// registerRegexp installs the regexp(pattern, value) function SQLite calls for
// "value REGEXP pattern". The driver keeps registrations process-wide.
func registerRegexp() error {
	regexpOnce.Do(func() {
		regexpErr = sqlite.RegisterDeterministicScalarFunction("regexp", 2, sqlRegexp)
	})
	return regexpErr
}

func sqlRegexp(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	pattern, ok := sqlText(args[0])
	if !ok {
		return nil, nil
	}
	value, ok := sqlText(args[1])
	if !ok {
		return int64(0), nil
	}

	re, err := compileCached(pattern)
	if err != nil {
		return nil, err
	}
	if re.MatchString(value) {
		return int64(1), nil
	}
	return int64(0), nil
}

func compileCached(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Add(pattern, re)
	return re, nil
}

func sqlText(v driver.Value) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return fmt.Sprint(t), true
	}
}
