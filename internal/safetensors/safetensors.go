// Package safetensors reads and writes the safetensors weight format: an
// 8-byte little-endian header length, a JSON header, then raw tensor data.
package safetensors

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/goccy/go-json"

	"github.com/samcharles93/gpt2gen/internal/resource"
)

const metadataKey = "__metadata__"

type TensorInfo struct {
	DType string
	Shape []int
	Start int64
	End   int64
}

// File is a parsed safetensors blob. Tensor data is read lazily from Data.
type File struct {
	Path     string
	Metadata map[string]string
	Tensors  map[string]TensorInfo

	data []byte
	res  *resource.File
}

type tensorHeader struct {
	DType       string  `json:"dtype"`
	Shape       []int   `json:"shape"`
	DataOffsets []int64 `json:"data_offsets"`
}

// Open maps path and parses its header.
func Open(path string) (*File, error) {
	res, err := resource.Open(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(path, res.Data)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	f.res = res
	return f, nil
}

// Parse reads the header of an in-memory safetensors blob. data must stay
// valid while the File is used.
func Parse(name string, data []byte) (*File, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%s: truncated header length", name)
	}
	headerLen := binary.LittleEndian.Uint64(data[:8])
	if headerLen > uint64(len(data)-8) {
		return nil, fmt.Errorf("%s: header length %d exceeds file size", name, headerLen)
	}
	headerBytes := data[8 : 8+headerLen]

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &raw); err != nil {
		return nil, fmt.Errorf("%s: parse header: %w", name, err)
	}

	var metadata map[string]string
	if msg, ok := raw[metadataKey]; ok {
		if err := json.Unmarshal(msg, &metadata); err != nil {
			return nil, fmt.Errorf("%s: parse metadata: %w", name, err)
		}
		delete(raw, metadataKey)
	}

	body := data[8+headerLen:]
	tensors := make(map[string]TensorInfo, len(raw))
	for tname, msg := range raw {
		var th tensorHeader
		if err := json.Unmarshal(msg, &th); err != nil {
			return nil, fmt.Errorf("parse tensor %s: %w", tname, err)
		}
		if len(th.DataOffsets) != 2 {
			return nil, fmt.Errorf("tensor %s: invalid data_offsets", tname)
		}
		start, end := th.DataOffsets[0], th.DataOffsets[1]
		if start < 0 || end < start || end > int64(len(body)) {
			return nil, fmt.Errorf("tensor %s: offsets [%d, %d) outside data of %d bytes", tname, start, end, len(body))
		}
		tensors[tname] = TensorInfo{
			DType: th.DType,
			Shape: th.Shape,
			Start: start,
			End:   end,
		}
	}
	return &File{
		Path:     name,
		Metadata: metadata,
		Tensors:  tensors,
		data:     body,
	}, nil
}

func (f *File) Tensor(name string) (TensorInfo, bool) {
	t, ok := f.Tensors[name]
	return t, ok
}

// ReadTensor returns the raw bytes of a tensor. The slice aliases the file
// data.
func (f *File) ReadTensor(name string) ([]byte, TensorInfo, error) {
	t, ok := f.Tensors[name]
	if !ok {
		return nil, TensorInfo{}, fmt.Errorf("tensor not found: %s", name)
	}
	return f.data[t.Start:t.End], t, nil
}

// ReadTensorF32 decodes a F32, BF16 or F16 tensor into float32 values.
func (f *File) ReadTensorF32(name string) ([]float32, TensorInfo, error) {
	raw, info, err := f.ReadTensor(name)
	if err != nil {
		return nil, TensorInfo{}, err
	}
	n, err := numElements(info.Shape)
	if err != nil {
		return nil, TensorInfo{}, fmt.Errorf("tensor %s: %w", name, err)
	}
	switch info.DType {
	case "F32":
		if len(raw) != n*4 {
			return nil, TensorInfo{}, fmt.Errorf("tensor %s: invalid f32 data size", name)
		}
		out := make([]float32, n)
		for i := range n {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, info, nil
	case "BF16":
		if len(raw) != n*2 {
			return nil, TensorInfo{}, fmt.Errorf("tensor %s: invalid bf16 data size", name)
		}
		out := make([]float32, n)
		for i := range n {
			out[i] = bf16ToF32(binary.LittleEndian.Uint16(raw[i*2:]))
		}
		return out, info, nil
	case "F16":
		if len(raw) != n*2 {
			return nil, TensorInfo{}, fmt.Errorf("tensor %s: invalid f16 data size", name)
		}
		out := make([]float32, n)
		for i := range n {
			out[i] = fp16ToFloat32(binary.LittleEndian.Uint16(raw[i*2:]))
		}
		return out, info, nil
	default:
		return nil, TensorInfo{}, fmt.Errorf("unsupported dtype %s", info.DType)
	}
}

// Close releases the underlying mapping, if any.
func (f *File) Close() error {
	if f == nil || f.res == nil {
		return nil
	}
	err := f.res.Close()
	f.res = nil
	f.data = nil
	return err
}

// Tensor is a named float32 tensor to be written.
type Tensor struct {
	Name  string
	Shape []int
	Data  []float32
}

// Write encodes tensors as F32 in name order.
func Write(w io.Writer, metadata map[string]string, tensors ...Tensor) error {
	sorted := slices.Clone(tensors)
	slices.SortFunc(sorted, func(a, b Tensor) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})

	header := make(map[string]any, len(sorted)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}
	var offset int64
	for _, t := range sorted {
		if t.Name == "" || t.Name == metadataKey {
			return fmt.Errorf("invalid tensor name %q", t.Name)
		}
		if _, dup := header[t.Name]; dup {
			return fmt.Errorf("duplicate tensor %s", t.Name)
		}
		n, err := numElements(t.Shape)
		if err != nil {
			return fmt.Errorf("tensor %s: %w", t.Name, err)
		}
		if n != len(t.Data) {
			return fmt.Errorf("tensor %s: shape %v holds %d values, got %d", t.Name, t.Shape, n, len(t.Data))
		}
		end := offset + int64(n)*4
		header[t.Name] = tensorHeader{DType: "F32", Shape: t.Shape, DataOffsets: []int64{offset, end}}
		offset = end
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}

	bw := bufio.NewWriter(w)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(headerBytes)))
	if _, err := bw.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := bw.Write(headerBytes); err != nil {
		return err
	}
	var buf [4]byte
	for _, t := range sorted {
		for _, v := range t.Data {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			if _, err := bw.Write(buf[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func numElements(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("empty shape")
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("invalid dim %d", d)
		}
		if n > (int(^uint(0)>>1))/d {
			return 0, fmt.Errorf("tensor too large")
		}
		n *= d
	}
	return n, nil
}

func bf16ToF32(u uint16) float32 {
	return math.Float32frombits(uint32(u) << 16)
}

func fp16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h & 0x3FF)
	var f uint32
	switch exp {
	case 0:
		if frac == 0 {
			f = sign << 31
		} else {
			e := uint32(127 - 15 + 1)
			for (frac & 0x400) == 0 {
				frac <<= 1
				e--
			}
			frac &= 0x3FF
			f = (sign << 31) | (e << 23) | (frac << 13)
		}
	case 0x1F:
		f = (sign << 31) | 0x7F800000 | (frac << 13)
	default:
		e := exp + (127 - 15)
		f = (sign << 31) | (e << 23) | (frac << 13)
	}
	return math.Float32frombits(f)
}
