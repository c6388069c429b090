package mesh

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the semantic role of a texture.
type Kind uint8

const (
	Diffuse Kind = iota
	Specular
	Normal
	Height

	kindCount
)

var kindNames = [kindCount]string{"diffuse", "specular", "normal", "height"}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind accepts a kind name with or without the "texture_" prefix.
func ParseKind(s string) (Kind, error) {
	name := strings.TrimPrefix(strings.ToLower(s), "texture_")
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("mesh: unknown texture kind %q", s)
}

// Texture references an image loaded by a texture loader.
type Texture struct {
	ID   uint32 // opaque handle issued by the loader
	Kind Kind
	Path string // source path, used by the loader for de-duplication
}

// SamplerBinding assigns one texture to a texture unit and sampler name.
type SamplerBinding struct {
	Unit    int
	Name    string // e.g. "diffuse1", "specular2"
	Texture Texture
}

// SamplerBindings numbers textures per kind starting at 1 in list order:
// the second diffuse texture is bound as "diffuse2". Texture i uses unit i.
// Numbering starts over on every call.
func SamplerBindings(textures []Texture) []SamplerBinding {
	var tally [kindCount]int
	out := make([]SamplerBinding, 0, len(textures))
	for i, t := range textures {
		name := t.Kind.String()
		if t.Kind < kindCount {
			tally[t.Kind]++
			name += strconv.Itoa(tally[t.Kind])
		}
		out = append(out, SamplerBinding{Unit: i, Name: name, Texture: t})
	}
	return out
}
