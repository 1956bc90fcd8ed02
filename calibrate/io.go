package calibrate

import (
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// LoadGenerator reads a generator configuration from a YAML file.
func LoadGenerator(path string) (Generator, error) {
	var g Generator
	data, err := os.ReadFile(path)
	if err != nil {
		return g, err
	}
	if err := yaml.Unmarshal(data, &g); err != nil {
		return g, err
	}
	return g, nil
}

// Save writes the dataset, truth included, to a YAML file.
func (d *Dataset) Save(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDataset reads a dataset written by Save.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func workerDefault() int {
	return runtime.NumCPU()
}
