package service

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// workload — минимальная часть Kubernetes манифеста, которую мы проверяем.
type workload struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Metadata   struct {
		Name string `yaml:"name"`
	} `yaml:"metadata"`
	Spec struct {
		Containers []container `yaml:"containers"`
		Template   struct {
			Spec struct {
				Containers []container `yaml:"containers"`
			} `yaml:"spec"`
		} `yaml:"template"`
		JobTemplate struct {
			Spec struct {
				Template struct {
					Spec struct {
						Containers []container `yaml:"containers"`
					} `yaml:"spec"`
				} `yaml:"template"`
			} `yaml:"spec"`
		} `yaml:"jobTemplate"`
	} `yaml:"spec"`
}

type container struct {
	Name  string `yaml:"name"`
	Image string `yaml:"image"`
}

// containers возвращает контейнеры пода в зависимости от kind.
func (w *workload) containers() []container {
	switch w.Kind {
	case "Pod":
		return w.Spec.Containers
	case "CronJob":
		return w.Spec.JobTemplate.Spec.Template.Spec.Containers
	default:
		return w.Spec.Template.Spec.Containers
	}
}

// podKinds — kind'ы, у которых должны быть контейнеры.
var podKinds = map[string]bool{
	"Pod":         true,
	"Job":         true,
	"CronJob":     true,
	"Deployment":  true,
	"StatefulSet": true,
	"DaemonSet":   true,
}

// InspectWorkload проверяет сгенерированный манифест и возвращает
// предупреждения. Пустой результат — замечаний нет.
//
// Проверка не блокирующая: манифест всё равно уходит в деплой.
func InspectWorkload(manifest string) []string {
	if strings.TrimSpace(manifest) == "" {
		return []string{"manifest is empty"}
	}

	var warnings []string
	dec := yaml.NewDecoder(strings.NewReader(manifest))

	for doc := 1; ; doc++ {
		var w workload
		err := dec.Decode(&w)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("document %d: invalid YAML: %v", doc, err))
			break
		}

		if w.APIVersion == "" {
			warnings = append(warnings, fmt.Sprintf("document %d: missing apiVersion", doc))
		}
		if w.Kind == "" {
			warnings = append(warnings, fmt.Sprintf("document %d: missing kind", doc))
			continue
		}
		if !podKinds[w.Kind] {
			continue
		}

		containers := w.containers()
		if len(containers) == 0 {
			warnings = append(warnings, fmt.Sprintf("document %d: %s has no containers", doc, w.Kind))
		}
		for _, c := range containers {
			if c.Image == "" {
				warnings = append(warnings, fmt.Sprintf("document %d: container %q has no image", doc, c.Name))
			}
		}
	}

	return warnings
}
