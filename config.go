package corevm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is a typed key/value store, same shape as the teacher's
// grammar/compiler Config: a flat map from dotted path to a tagged
// value, rather than a nested struct, so a VM's tunables can be
// round-tripped through YAML without a fixed schema.
type Config map[string]*cfgVal

// NewConfig creates a configuration object primed with the defaults a
// bare VM needs: pool growth threshold, max eval depth, debug-on-error,
// and whether source coverage hit-counts are tracked.
func NewConfig() *Config {
	m := make(Config)
	m.SetInt("heap.initial_pool_size", 1024)
	m.SetInt("heap.small_block_class_max", 128)
	m.SetInt("eval.max_depth", 10000)
	m.SetBool("debug.on_error", false)
	m.SetBool("debug.coverage", false)
	m.SetInt("port.max_output", 4096)
	return &m
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("Can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("Can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Bool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Int)
	(*c)[path].asInt = v
}

func (c *Config) SetString(path string, v string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_String)
	(*c)[path].asString = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("Bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("Int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("String setting `%s` does not exist", path))
}

// yamlConfig is the on-disk shape LoadYAML/WriteYAML use; only scalar
// leaves are supported, matching Config's own flat string/int/bool
// value set.
type yamlConfig map[string]any

// LoadYAML merges settings from a YAML document into c, overwriting any
// default with the same dotted path. Keys not already present in c are
// rejected -- a VM's tunables are a closed set, unlike a grammar's.
func (c *Config) LoadYAML(data []byte) error {
	var doc yamlConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for path, raw := range doc {
		cur, ok := (*c)[path]
		if !ok {
			return fmt.Errorf("config: unknown setting %q", path)
		}
		switch cur.typ {
		case cfgValType_Bool:
			v, ok := raw.(bool)
			if !ok {
				return fmt.Errorf("config: %q expects a bool", path)
			}
			c.SetBool(path, v)
		case cfgValType_Int:
			v, ok := raw.(int)
			if !ok {
				return fmt.Errorf("config: %q expects an int", path)
			}
			c.SetInt(path, v)
		case cfgValType_String:
			v, ok := raw.(string)
			if !ok {
				return fmt.Errorf("config: %q expects a string", path)
			}
			c.SetString(path, v)
		}
	}
	return nil
}

// LoadYAMLFile reads path and merges it into c via LoadYAML.
func (c *Config) LoadYAMLFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.LoadYAML(data)
}

// WriteYAML serializes the current settings back to YAML, sorted by
// path (map iteration order in Go is randomized; yaml.v3 sorts map keys
// on marshal, so this is stable across calls).
func (c *Config) WriteYAML() ([]byte, error) {
	doc := make(yamlConfig, len(*c))
	for path, v := range *c {
		switch v.typ {
		case cfgValType_Bool:
			doc[path] = v.asBool
		case cfgValType_Int:
			doc[path] = v.asInt
		case cfgValType_String:
			doc[path] = v.asString
		}
	}
	return yaml.Marshal(doc)
}
