package objfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"toon-mesh-renderer/internal/mesh"
)

type textureRef struct {
	kind mesh.Kind
	path string
}

type material struct {
	maps []textureRef
}

// mtlKinds maps MTL texture statements to texture kinds. Bump maps are
// treated as height maps.
var mtlKinds = map[string]mesh.Kind{
	"map_kd":   mesh.Diffuse,
	"map_ks":   mesh.Specular,
	"norm":     mesh.Normal,
	"map_kn":   mesh.Normal,
	"map_bump": mesh.Height,
	"bump":     mesh.Height,
	"disp":     mesh.Height,
}

func loadMTL(path string) (map[string]material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dir := filepath.Dir(path)
	mats := make(map[string]material)
	var name string
	var cur *material

	flush := func() {
		if cur != nil {
			mats[name] = *cur
		}
	}

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		key := strings.ToLower(fields[0])
		if key == "newmtl" {
			flush()
			if len(fields) < 2 {
				return nil, fmt.Errorf("%s:%d: newmtl without a name", path, line)
			}
			name = fields[1]
			cur = &material{}
			continue
		}
		kind, ok := mtlKinds[key]
		if !ok || cur == nil || len(fields) < 2 {
			continue
		}
		// Options such as "-bm 0.5" come first; the file name is last.
		file := strings.ReplaceAll(fields[len(fields)-1], "\\", "/")
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		cur.maps = append(cur.maps, textureRef{kind: kind, path: file})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return mats, nil
}
