package phantom

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrModelNotFound is returned when a library does not define the requested
// model id.
var ErrModelNotFound = fmt.Errorf("model not found in library")

// LoadModel reads a model from a library file, choosing the parser by file
// extension: .yaml/.yml for the YAML format, anything else for the legacy
// column format.
func LoadModel(path string, modelID int) (*Model, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return LoadModelYAML(path, modelID)
	}
	return LoadModelDat(path, modelID)
}

// library mirrors the YAML document layout.
type library struct {
	Models []Model `yaml:"models"`
}

// LoadModelYAML reads a model from a YAML library of the form:
//
//	models:
//	  - id: 8
//	    objects:
//	      - {kind: gaussian, intensity: 1.0, x0: 0, y0: 0, z0: 0, a: 0.5, b: 0.5, c: 0.5}
func LoadModelYAML(path string, modelID int) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading model library: %w", err)
	}
	var lib library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("error parsing model library: %w", err)
	}
	for _, m := range lib.Models {
		if m.ID == modelID {
			model := m
			return &model, nil
		}
	}
	return nil, fmt.Errorf("model %d: %w", modelID, ErrModelNotFound)
}

// UnmarshalYAML accepts a kind either as its numeric legacy code or as a
// name ("gaussian", "disk", ...).
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	if code, err := strconv.Atoi(value.Value); err == nil {
		*k = KindFromCode(code)
		return nil
	}
	name := strings.ToLower(strings.TrimSpace(value.Value))
	for kind, s := range kindNames {
		if s == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown object kind %q", value.Value)
}

// MarshalYAML writes kinds by name so round-tripped libraries stay readable.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// LoadModelDat reads a model from a legacy column-format library:
//
//	# comment
//	Model : 08;
//	Components : 2;
//	Object : 1 1.0 0.0 0.0 0.0 0.69 0.92 0.81 0.0 0.0 0.0;
//
// The Object columns are: kind code, intensity, then the first centre
// column is y0 and the second x0 (inherited from the original library
// layout), then z0, the three semi-axes and the three rotation angles.
func LoadModelDat(path string, modelID int) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading model library: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, ok := splitDatLine(scanner.Text())
		if !ok || key != "Model" {
			continue
		}
		id, err := strconv.Atoi(val)
		if err != nil || id != modelID {
			continue
		}

		model := &Model{ID: id}
		components, err := readComponents(scanner)
		if err != nil {
			return nil, fmt.Errorf("model %d: %w", modelID, err)
		}
		for n := 0; n < components; n++ {
			obj, err := readObjectLine(scanner)
			if err != nil {
				return nil, fmt.Errorf("model %d, component %d: %w", modelID, n, err)
			}
			model.Objects = append(model.Objects, obj)
		}
		return model, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading model library: %w", err)
	}
	return nil, fmt.Errorf("model %d: %w", modelID, ErrModelNotFound)
}

// splitDatLine parses a "Key : value;" line, skipping comments and blanks.
func splitDatLine(line string) (key, val string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	key, val, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	val = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), ";"))
	return strings.TrimSpace(key), val, true
}

func readComponents(scanner *bufio.Scanner) (int, error) {
	for scanner.Scan() {
		key, val, ok := splitDatLine(scanner.Text())
		if !ok {
			continue
		}
		if key != "Components" {
			return 0, fmt.Errorf("expected Components line, got %q", key)
		}
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("bad component count %q", val)
		}
		return n, nil
	}
	return 0, fmt.Errorf("component count is missing")
}

func readObjectLine(scanner *bufio.Scanner) (Object, error) {
	for scanner.Scan() {
		key, val, ok := splitDatLine(scanner.Text())
		if !ok {
			continue
		}
		if key != "Object" {
			return Object{}, fmt.Errorf("expected Object line, got %q", key)
		}
		fields := strings.Fields(val)
		if len(fields) != 11 {
			return Object{}, fmt.Errorf("expected 11 object parameters, got %d", len(fields))
		}
		vals := make([]float64, 11)
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Object{}, fmt.Errorf("bad object parameter %q: %w", s, err)
			}
			vals[i] = v
		}
		return Object{
			Kind:      KindFromCode(int(vals[0])),
			Intensity: vals[1],
			Y0:        vals[2],
			X0:        vals[3],
			Z0:        vals[4],
			A:         vals[5],
			B:         vals[6],
			C:         vals[7],
			Phi1:      vals[8],
			Phi2:      vals[9],
			Phi3:      vals[10],
		}, nil
	}
	return Object{}, fmt.Errorf("object line is missing")
}
