package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/engine/docxtable"
	"github.com/iklobato/pdftable/engine/htmltable"
	"github.com/iklobato/pdftable/engine/limiter"
	"github.com/iklobato/pdftable/engine/remote"
	"github.com/iklobato/pdftable/engine/router"
	"github.com/iklobato/pdftable/engine/spreadsheet"
	"github.com/iklobato/pdftable/engine/tabulajava"
	"github.com/iklobato/pdftable/engine/traced"
	"github.com/iklobato/pdftable/format"
)

type engineFile struct {
	Engines map[string]engineConfig `yaml:"engines"`
}

type engineConfig struct {
	Type string `yaml:"type"`

	Jar      string `yaml:"jar"`
	Java     string `yaml:"java"`
	Method   string `yaml:"method"`
	Password string `yaml:"password"`

	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	Limit *int `yaml:"limit"`
}

// Engine builds the format router. Without an engines file DOCX, HTML and
// XLSX are always served and PDF is served by tabula-java when TABULA_JAR
// is set.
func (c *Config) Engine() (*router.Router, error) {
	configs, order, err := c.engineConfigs()

	if err != nil {
		return nil, err
	}

	r := router.New()

	for _, key := range order {
		f, err := format.Parse(key)

		if err != nil {
			return nil, err
		}

		config := configs[key]

		e, err := c.createEngine(f, config)

		if err != nil {
			return nil, fmt.Errorf("engine %s: %w", key, err)
		}

		if config.Limit != nil {
			e = limiter.New(limiter.PerSecond(*config.Limit), e)
		}

		r.Handle(f, traced.New(f.Key(), e))
	}

	return r, nil
}

func (c *Config) engineConfigs() (map[string]engineConfig, []string, error) {
	if c.EnginesFile == "" {
		configs := map[string]engineConfig{
			"docx": {Type: "docx"},
			"html": {Type: "html"},
			"xlsx": {Type: "xlsx"},
		}
		order := []string{"docx", "html", "xlsx"}

		if c.TabulaJar != "" {
			configs["pdf"] = engineConfig{Type: "tabula"}
			order = append([]string{"pdf"}, order...)
		}

		return configs, order, nil
	}

	return parseEngineFile(c.EnginesFile)
}

func parseEngineFile(path string) (map[string]engineConfig, []string, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var file engineFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var doc struct {
		Engines yaml.Node `yaml:"engines"`
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var order []string

	// mapping nodes alternate keys and values
	for i := 0; i+1 < len(doc.Engines.Content); i += 2 {
		order = append(order, doc.Engines.Content[i].Value)
	}

	if len(order) == 0 {
		return nil, nil, fmt.Errorf("%s defines no engines", path)
	}

	return file.Engines, order, nil
}

func (c *Config) createEngine(f format.Format, cfg engineConfig) (engine.Engine, error) {
	switch strings.ToLower(cfg.Type) {
	case "tabula", "tabula-java":
		return c.tabulaEngine(cfg)

	case "remote", "tabula-api":
		return remoteEngine(f, cfg)

	case "docx":
		return docxtable.New(), nil

	case "html":
		return htmltable.New(), nil

	case "xlsx", "excel":
		return spreadsheet.New(), nil

	default:
		return nil, errors.New("invalid engine type: " + cfg.Type)
	}
}

func (c *Config) tabulaEngine(cfg engineConfig) (engine.Engine, error) {
	jar := cfg.Jar

	if jar == "" {
		jar = c.TabulaJar
	}

	java := cfg.Java

	if java == "" {
		java = c.JavaBin
	}

	options := []tabulajava.Option{
		tabulajava.WithJava(java),
	}

	switch method := tabulajava.Method(strings.ToLower(cfg.Method)); method {
	case tabulajava.MethodAuto, tabulajava.MethodLattice, tabulajava.MethodStream:
		options = append(options, tabulajava.WithMethod(method))
	default:
		return nil, errors.New("invalid tabula method: " + cfg.Method)
	}

	if cfg.Password != "" {
		options = append(options, tabulajava.WithPassword(cfg.Password))
	}

	return tabulajava.New(jar, options...)
}

func remoteEngine(f format.Format, cfg engineConfig) (engine.Engine, error) {
	options := []remote.Option{
		remote.WithFormats(f),
	}

	if cfg.Token != "" {
		options = append(options, remote.WithToken(cfg.Token))
	}

	return remote.New(cfg.URL, options...)
}
