package gltfscene

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

var (
	ErrUnsupportedAccessor = errors.New("unsupported accessor layout")
	ErrTruncatedBuffer     = errors.New("accessor range exceeds buffer")
)

func componentSize(ct gltf.ComponentType) int {
	switch ct {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	}
	return 0
}

func componentCount(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4:
		return 4
	case gltf.AccessorMat4:
		return 16
	}
	return 0
}

// elementBase resolves an accessor down to raw buffer bytes. Sparse
// accessors and accessors without a buffer view do not occur in the
// documents we consume.
func elementBase(doc *gltf.Document, acc *gltf.Accessor) (data []byte, stride int, err error) {
	if acc.BufferView == nil || acc.Sparse != nil {
		return nil, 0, errors.Wrap(ErrUnsupportedAccessor, "sparse or viewless accessor")
	}
	if int(*acc.BufferView) >= len(doc.BufferViews) {
		return nil, 0, errors.Wrapf(ErrUnsupportedAccessor, "buffer view %d out of range", *acc.BufferView)
	}
	bv := doc.BufferViews[*acc.BufferView]
	if int(bv.Buffer) >= len(doc.Buffers) {
		return nil, 0, errors.Wrapf(ErrUnsupportedAccessor, "buffer %d out of range", bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer].Data

	elemSize := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if elemSize == 0 {
		return nil, 0, errors.Wrapf(ErrUnsupportedAccessor, "component type %d / type %d", acc.ComponentType, acc.Type)
	}
	stride = int(bv.ByteStride)
	if stride == 0 {
		stride = elemSize
	}

	start := int(bv.ByteOffset) + int(acc.ByteOffset)
	end := start
	if acc.Count > 0 {
		end = start + int(acc.Count-1)*stride + elemSize
	}
	if start > len(buf) || end > len(buf) {
		return nil, 0, errors.Wrapf(ErrTruncatedBuffer, "need %d bytes of %d", end, len(buf))
	}
	return buf[start:], stride, nil
}

// readComponent decodes one component to float, denormalizing integer
// storage when the accessor is marked normalized.
func readComponent(data []byte, ct gltf.ComponentType, normalized bool) float32 {
	switch ct {
	case gltf.ComponentFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(data))
	case gltf.ComponentUbyte:
		v := float32(data[0])
		if normalized {
			v /= 255.0
		}
		return v
	case gltf.ComponentByte:
		v := float32(int8(data[0]))
		if normalized {
			v /= 127.0
			if v < -1 {
				v = -1
			}
		}
		return v
	case gltf.ComponentUshort:
		v := float32(binary.LittleEndian.Uint16(data))
		if normalized {
			v /= 65535.0
		}
		return v
	case gltf.ComponentShort:
		v := float32(int16(binary.LittleEndian.Uint16(data)))
		if normalized {
			v /= 32767.0
			if v < -1 {
				v = -1
			}
		}
		return v
	case gltf.ComponentUint:
		return float32(binary.LittleEndian.Uint32(data))
	}
	return 0
}

// readFloats decodes a whole accessor as rows of float components.
func readFloats(doc *gltf.Document, index uint32, want gltf.AccessorType) ([][]float32, error) {
	if int(index) >= len(doc.Accessors) {
		return nil, errors.Wrapf(ErrUnsupportedAccessor, "accessor %d out of range", index)
	}
	acc := doc.Accessors[index]
	if acc.Type != want {
		return nil, errors.Wrapf(ErrUnsupportedAccessor, "accessor %d type %v, wanted %v", index, acc.Type, want)
	}

	data, stride, err := elementBase(doc, acc)
	if err != nil {
		return nil, errors.Wrapf(err, "accessor %d", index)
	}

	csize := componentSize(acc.ComponentType)
	ccount := componentCount(acc.Type)

	ret := make([][]float32, acc.Count)
	for i := range ret {
		row := make([]float32, ccount)
		base := i * stride
		for j := range row {
			row[j] = readComponent(data[base+j*csize:], acc.ComponentType, acc.Normalized)
		}
		ret[i] = row
	}
	return ret, nil
}

// readUints decodes index-like accessors (vertex indices, joint ids).
func readUints(doc *gltf.Document, index uint32, want gltf.AccessorType) ([][]int, error) {
	if int(index) >= len(doc.Accessors) {
		return nil, errors.Wrapf(ErrUnsupportedAccessor, "accessor %d out of range", index)
	}
	acc := doc.Accessors[index]
	if acc.Type != want {
		return nil, errors.Wrapf(ErrUnsupportedAccessor, "accessor %d type %v, wanted %v", index, acc.Type, want)
	}
	switch acc.ComponentType {
	case gltf.ComponentUbyte, gltf.ComponentUshort, gltf.ComponentUint:
	default:
		return nil, errors.Wrapf(ErrUnsupportedAccessor, "accessor %d: integer component expected", index)
	}

	data, stride, err := elementBase(doc, acc)
	if err != nil {
		return nil, errors.Wrapf(err, "accessor %d", index)
	}

	csize := componentSize(acc.ComponentType)
	ccount := componentCount(acc.Type)

	ret := make([][]int, acc.Count)
	for i := range ret {
		row := make([]int, ccount)
		base := i * stride
		for j := range row {
			switch acc.ComponentType {
			case gltf.ComponentUbyte:
				row[j] = int(data[base+j*csize])
			case gltf.ComponentUshort:
				row[j] = int(binary.LittleEndian.Uint16(data[base+j*csize:]))
			case gltf.ComponentUint:
				row[j] = int(binary.LittleEndian.Uint32(data[base+j*csize:]))
			}
		}
		ret[i] = row
	}
	return ret, nil
}
