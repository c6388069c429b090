package objfile

import "github.com/go-gl/mathgl/mgl32"

// computeNormals fills in area-weighted smooth normals for vertices the
// file gave none.
func computeNormals(g *group) {
	missing := false
	for _, has := range g.hasNormal {
		if !has {
			missing = true
			break
		}
	}
	if !missing {
		return
	}

	acc := make([]mgl32.Vec3, len(g.vertices))
	for i := 0; i+2 < len(g.indices); i += 3 {
		a, b, c := g.indices[i], g.indices[i+1], g.indices[i+2]
		p0 := g.vertices[a].Position
		n := g.vertices[b].Position.Sub(p0).Cross(g.vertices[c].Position.Sub(p0))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	for i := range g.vertices {
		if g.hasNormal[i] || acc[i].Len() == 0 {
			continue
		}
		g.vertices[i].Normal = acc[i].Normalize()
	}
}

// computeTangents accumulates per-triangle tangent and bitangent vectors
// from the texture coordinates. Triangles with degenerate UVs add nothing.
func computeTangents(g *group) {
	tan := make([]mgl32.Vec3, len(g.vertices))
	bit := make([]mgl32.Vec3, len(g.vertices))
	for i := 0; i+2 < len(g.indices); i += 3 {
		tri := [3]uint32{g.indices[i], g.indices[i+1], g.indices[i+2]}
		v0, v1, v2 := &g.vertices[tri[0]], &g.vertices[tri[1]], &g.vertices[tri[2]]

		edge1 := v1.Position.Sub(v0.Position)
		edge2 := v2.Position.Sub(v0.Position)
		duv1 := v1.TexCoords.Sub(v0.TexCoords)
		duv2 := v2.TexCoords.Sub(v0.TexCoords)

		det := duv1.X()*duv2.Y() - duv2.X()*duv1.Y()
		if det > -1e-12 && det < 1e-12 {
			continue
		}
		f := 1 / det
		t := edge1.Mul(duv2.Y()).Sub(edge2.Mul(duv1.Y())).Mul(f)
		b := edge2.Mul(duv1.X()).Sub(edge1.Mul(duv2.X())).Mul(f)
		for _, v := range tri {
			tan[v] = tan[v].Add(t)
			bit[v] = bit[v].Add(b)
		}
	}
	for i := range g.vertices {
		if tan[i].Len() > 0 {
			g.vertices[i].Tangent = tan[i].Normalize()
		}
		if bit[i].Len() > 0 {
			g.vertices[i].Bitangent = bit[i].Normalize()
		}
	}
}
