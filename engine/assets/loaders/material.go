package loaders

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/core"
)

/**
 * @brief A material as described by a Wavefront MTL library.
 */
type Material struct {
	Name string
	/** @brief Kd plus the d (or 1-Tr) opacity. */
	DiffuseColour mgl32.Vec4
	Shininess     float32
	/** @brief Path of the map_Kd texture, relative to the library. */
	DiffuseMapName string
}

// DecodeMaterials parses an MTL library into materials keyed by name.
func DecodeMaterials(name string, data []byte) (map[string]*Material, error) {
	materials := make(map[string]*Material)
	var current *Material

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		fields := strings.Fields(line)
		key := fields[0]
		value := strings.TrimSpace(strings.TrimPrefix(line, key))

		if key == "newmtl" {
			if value == "" {
				return nil, fmt.Errorf("material library '%s' line %d: newmtl without a name", name, lineNumber)
			}
			current = &Material{Name: value, DiffuseColour: mgl32.Vec4{1, 1, 1, 1}}
			materials[value] = current
			continue
		}
		if current == nil {
			core.LogWarn("material library '%s': '%s' before newmtl on line %d. Skipping...", name, key, lineNumber)
			continue
		}

		var err error
		switch key {
		case "Kd":
			var kd []float32
			kd, err = parseFloats(fields[1:], 3)
			if err == nil {
				current.DiffuseColour = mgl32.Vec4{kd[0], kd[1], kd[2], current.DiffuseColour[3]}
			}
		case "d", "Tr":
			var d []float32
			d, err = parseFloats(fields[1:], 1)
			if err == nil {
				if key == "Tr" {
					d[0] = 1 - d[0]
				}
				current.DiffuseColour[3] = d[0]
			}
		case "Ns":
			var ns []float32
			ns, err = parseFloats(fields[1:], 1)
			if err == nil {
				current.Shininess = ns[0]
			}
		case "map_Kd":
			// options such as -clamp come before the file name
			current.DiffuseMapName = fields[len(fields)-1]
		case "Ka", "Ks", "Ke", "Ni", "illum", "map_Ks", "map_Bump", "bump", "map_d":
			// not used by the previewer
		default:
			core.LogDebug("material library '%s': unknown key '%s' on line %d", name, key, lineNumber)
		}
		if err != nil {
			return nil, fmt.Errorf("material library '%s' line %d: %w", name, lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, m := range materials {
		if err := validateMaterial(m); err != nil {
			return nil, fmt.Errorf("material library '%s': %w", name, err)
		}
	}
	return materials, nil
}

func validateMaterial(material *Material) error {
	// Check that DiffuseColour values are within [0.0, 1.0] range
	for _, v := range material.DiffuseColour {
		if !inRange(v) {
			return fmt.Errorf("material '%s': diffuse colour values must be between 0.0 and 1.0", material.Name)
		}
	}

	// Check shininess for a non-negative value
	if material.Shininess < 0 {
		return fmt.Errorf("material '%s': shininess must be a non-negative value", material.Name)
	}
	return nil
}

// Check if a float32 value is within [0.0, 1.0]
func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}
