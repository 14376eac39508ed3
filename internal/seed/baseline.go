package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/workload"
	"gopkg.in/yaml.v3"
)

//go:embed baseline.yaml
var defaultBaseline []byte

// DefaultBaseline 返回内置的演示基线
func DefaultBaseline() (workload.Baseline, error) {
	return ParseBaseline(defaultBaseline)
}

// LoadBaseline 从 YAML 文件读取基线，path 为空时使用内置的演示基线
func LoadBaseline(path string) (workload.Baseline, error) {
	if path == "" {
		return DefaultBaseline()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return workload.Baseline{}, err
	}
	return ParseBaseline(data)
}

// ParseBaseline 不允许出现未知字段，拼错的字段名会直接报错；空文件得到空基线
func ParseBaseline(data []byte) (workload.Baseline, error) {
	baseline := workload.Baseline{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&baseline); err != nil {
		if errors.Is(err, io.EOF) {
			return workload.Baseline{}, nil
		}
		return workload.Baseline{}, err
	}

	return baseline, nil
}
