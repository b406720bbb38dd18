package linkrun

/*
   Copyright 2020 The linkrun authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Config is a configuration object safe for concurrent gets but not for
// sets. Items are addressed by a path of dot separated names for both
// setting and getting values. It is built in code from a plain map, the
// runtime has no configuration file format.
type Config struct {
	data interface{}
}

// NewConfig creates a config from an existing map[string]interface{}
// or an empty Config if nil is provided
func NewConfig(data map[string]interface{}) (c Config) {
	if data == nil {
		data = make(map[string]interface{})
	}
	c.data = data
	return c
}

// IsSet returns true if path is set. Path can be a dot separated keys or
// a variadic list of keys representing the path within config.
func (c Config) IsSet(path ...string) (ok bool) {
	if len(path) == 1 {
		path = strings.Split(path[0], ".")
	}
	return search(c.data, path) != nil
}

// Get retrieves the config item for the given path.
func (c Config) Get(path ...string) (config Config) {
	if len(path) == 1 {
		path = strings.Split(path[0], ".")
	}
	return Config{search(c.data, path)}
}

// String returns the string value for the current Config item or a
// provided default. The default is returned if the current item is nil or
// fails to parse to a string value.
func (c Config) String(def string) (value string) {
	if c.data == nil {
		return def
	}

	var err error
	if value, err = cast.ToStringE(c.data); err != nil {
		return def
	}
	return value
}

// Bool returns the bool value for the current Config item or a provided
// default.
func (c Config) Bool(def bool) (value bool) {
	if c.data == nil {
		return def
	}

	var err error
	if value, err = cast.ToBoolE(c.data); err != nil {
		return def
	}
	return value
}

// Duration returns the time.Duration value for the current Config item
// or a provided default.
func (c Config) Duration(def time.Duration) (value time.Duration) {
	if c.data == nil {
		return def
	}

	var err error
	if value, err = cast.ToDurationE(c.data); err != nil {
		return def
	}
	return value
}

// Int returns the int value for the current Config item or a provided
// default.
func (c Config) Int(def int) (value int) {
	if c.data == nil {
		return def
	}

	var err error
	if value, err = cast.ToIntE(c.data); err != nil {
		return def
	}
	return value
}

// Int64 returns the int64 value for the current Config item or a provided
// default.
func (c Config) Int64(def int64) (value int64) {
	if c.data == nil {
		return def
	}

	var err error
	if value, err = cast.ToInt64E(c.data); err != nil {
		return def
	}
	return value
}

// Map returns the current Config item as a map of Configs, returns nil if
// the item is not set or is not an object.
func (c Config) Map() (value map[string]Config) {
	if m, ok := c.data.(map[string]interface{}); ok {
		value = make(map[string]Config)
		for k, v := range m {
			value[k] = Config{v}
		}
	}
	return value
}

// Set the value for the given path
func (c Config) Set(value interface{}, path ...string) {
	if len(path) == 1 {
		path = strings.Split(path[0], ".")
	}
	set(c.data, value, path)
}

// search and fetch the value for the given path, returns nil if not found
func search(source interface{}, path []string) (data interface{}) {
	data = source
	var ok bool

	for _, key := range path {

		switch tmp := data.(type) {

		case map[string]interface{}:
			if data, ok = tmp[key]; !ok {
				return nil
			}

		case []interface{}:
			idx, err := strconv.ParseInt(key, 10, 64)
			if err != nil || idx < 0 || int(idx) >= len(tmp) {
				return nil
			}
			data = tmp[idx]

		default:
			return nil
		}
	}

	return data
}

// set the value for the given path creating any needed nested map
func set(source, value interface{}, path []string) {
	m, ok := source.(map[string]interface{})
	if !ok || m == nil {
		return
	}

	for i := 0; i < len(path); i++ {
		key := path[i]

		if i < len(path)-1 {
			next, ok := m[key].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				m[key] = next
			}

			m = next
			continue
		}

		m[key] = value
	}
}
