package mesh

import "fmt"

// Buffer is a handle to geometry uploaded to a Backend.
type Buffer uint32

// Backend is the rendering side a mesh is uploaded to and drawn with.
type Backend interface {
	Upload(vertices []byte, layout Layout, indices []uint32) (Buffer, error)
	Release(buf Buffer) error
	DrawElements(buf Buffer, mode Mode, count int, bindings []SamplerBinding) error
}

// Upload sends the vertices and current index list to b. A previous upload
// is released first, so a mesh holds at most one buffer at a time.
func (m *Mesh) Upload(b Backend) error {
	if err := m.Close(); err != nil {
		return err
	}
	buf, err := b.Upload(EncodeVertices(m.vertices), VertexLayout, m.indices)
	if err != nil {
		return fmt.Errorf("mesh %q: upload: %w", m.Name, err)
	}
	m.backend = b
	m.buf = buf
	m.dirty = false
	return nil
}

// Draw binds the mesh's textures and draws it with the mode matching the
// stored index list. If the index list changed since the last upload the
// mesh is uploaded again first.
func (m *Mesh) Draw() error {
	if m.backend == nil {
		return fmt.Errorf("mesh %q: %w", m.Name, ErrNotUploaded)
	}
	if m.dirty {
		if err := m.Upload(m.backend); err != nil {
			return err
		}
	}
	if err := m.backend.DrawElements(m.buf, m.mode, len(m.indices), SamplerBindings(m.textures)); err != nil {
		return fmt.Errorf("mesh %q: draw: %w", m.Name, err)
	}
	return nil
}

// Close releases the uploaded buffer. It is safe to call more than once;
// only the first call after an upload reaches the backend.
func (m *Mesh) Close() error {
	if m.backend == nil {
		return nil
	}
	b, buf := m.backend, m.buf
	m.backend = nil
	m.buf = 0
	m.dirty = false
	if err := b.Release(buf); err != nil {
		return fmt.Errorf("mesh %q: release: %w", m.Name, err)
	}
	return nil
}
