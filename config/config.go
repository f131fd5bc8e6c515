package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"
)

var bqloadHomeDir string

// Main holds default flag values.
var Main *File

func init() {
	Main = NewConfigFileWithDir(mustGetConfigHomeDir(), MainFileFullName)
}

const (
	MainDir            = ".bqload"
	MainFileNamePrefix = "config"
	MainFileNameExt    = "yaml"
	MainFileFullName   = MainFileNamePrefix + "." + MainFileNameExt
)

type KeyNotFoundError struct {
	configFile string
	key        string
}

func (k KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// File is a YAML file of keys and values stored in the user's config directory.
type File struct {
	Dirname      string
	FileName     string
	FilePrefix   string
	FileExt      string
	FullPath     string
	data         map[string]interface{}
	dataIsLoaded bool
	mu           sync.Mutex
}

func NewConfigFileWithDir(dirName string, filename string) *File {
	c := &File{Dirname: dirName, FileName: filename}
	c.FullPath = path.Join(dirName, filename)
	c.FileExt = strings.TrimLeft(path.Ext(filename), ".")
	c.FilePrefix = strings.TrimSuffix(c.FileName, "."+c.FileExt)
	c.data = make(map[string]interface{})
	return c
}

// Get will fetch the key from the config File into variable, out.
// Return KeyNotFoundError if we can't find the key.
func (c *File) Get(key string, out interface{}) error {
	if reflect.ValueOf(out).Kind() != reflect.Ptr {
		return errors.New("out must be a pointer")
	}
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	d, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return KeyNotFoundError{c.FullPath, key}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{WeaklyTypedInput: true, Result: out})
	if err != nil {
		return err
	}
	return dec.Decode(d)
}

func (c *File) Set(key string, val interface{}) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = val
	return c.save()
}

func (c *File) Delete(key string) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, keyExists := c.data[key]; !keyExists {
		return KeyNotFoundError{c.FullPath, key}
	}
	delete(c.data, key)
	return c.save()
}

// GetAllKeys returns the sorted keys found in the file.
func (c *File) GetAllKeys() ([]string, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	retval := make([]string, 0, len(c.data))
	for k := range c.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval, nil
}

// ensureLoaded reads the file once. A missing file is treated as empty.
func (c *File) ensureLoaded() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dataIsLoaded {
		return nil
	}
	b, err := ioutil.ReadFile(c.FullPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.dataIsLoaded = true
			return nil
		}
		return err
	}
	if err = yaml.Unmarshal(b, &c.data); err != nil {
		return fmt.Errorf("error reading config file %v: %v", c.FullPath, err)
	}
	if c.data == nil {
		c.data = make(map[string]interface{})
	}
	c.dataIsLoaded = true
	return nil
}

// save expects the caller to hold the lock.
func (c *File) save() error {
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("error marshalling data for config file %v: %v", c.FullPath, err)
	}
	if err := makeDir(c.Dirname); err != nil {
		return err
	}
	return ioutil.WriteFile(c.FullPath, b, 0600)
}
