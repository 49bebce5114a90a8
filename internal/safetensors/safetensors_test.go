package safetensors

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

// buildBlob assembles a safetensors blob from a header and raw data.
func buildBlob(t *testing.T, header map[string]any, data []byte) []byte {
	t.Helper()
	headerBytes, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	var buf bytes.Buffer
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(headerBytes)))
	buf.Write(lenBuf[:])
	buf.Write(headerBytes)
	buf.Write(data)
	return buf.Bytes()
}

func TestWriteThenOpen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "weights.safetensors")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	err = Write(f, map[string]string{"format": "toy"},
		Tensor{Name: "w", Shape: []int{2, 2}, Data: []float32{1, 2, 3, 4}},
		Tensor{Name: "bias", Shape: []int{2}, Data: []float32{-0.5, 0.25}},
	)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	sf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = sf.Close() }()

	if sf.Metadata["format"] != "toy" {
		t.Fatalf("metadata: got %v", sf.Metadata)
	}
	if len(sf.Tensors) != 2 {
		t.Fatalf("expected 2 tensors, got %d", len(sf.Tensors))
	}
	bias, info, err := sf.ReadTensorF32("bias")
	if err != nil {
		t.Fatalf("ReadTensorF32(bias): %v", err)
	}
	if info.Start != 0 || info.End != 8 {
		t.Fatalf("tensors must be laid out in name order, bias at [%d, %d)", info.Start, info.End)
	}
	if bias[0] != -0.5 || bias[1] != 0.25 {
		t.Fatalf("bias: got %v", bias)
	}
	w, info, err := sf.ReadTensorF32("w")
	if err != nil {
		t.Fatalf("ReadTensorF32(w): %v", err)
	}
	if len(info.Shape) != 2 || info.Shape[0] != 2 || info.Shape[1] != 2 {
		t.Fatalf("shape: got %v", info.Shape)
	}
	for i, want := range []float32{1, 2, 3, 4} {
		if w[i] != want {
			t.Fatalf("w[%d]: got %f want %f", i, w[i], want)
		}
	}
}

func TestWriteRejectsBadTensors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tensors []Tensor
	}{
		{"shape mismatch", []Tensor{{Name: "a", Shape: []int{3}, Data: []float32{1}}}},
		{"empty name", []Tensor{{Shape: []int{1}, Data: []float32{1}}}},
		{"reserved name", []Tensor{{Name: metadataKey, Shape: []int{1}, Data: []float32{1}}}},
		{"duplicate", []Tensor{
			{Name: "a", Shape: []int{1}, Data: []float32{1}},
			{Name: "a", Shape: []int{1}, Data: []float32{2}},
		}},
		{"empty shape", []Tensor{{Name: "a", Data: []float32{1}}}},
	}
	for _, tc := range tests {
		if err := Write(&bytes.Buffer{}, nil, tc.tensors...); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestOpenNonexistentFile(t *testing.T) {
	t.Parallel()
	if _, err := Open(filepath.Join(t.TempDir(), "missing.safetensors")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseTruncated(t *testing.T) {
	t.Parallel()

	if _, err := Parse("short", []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated length")
	}
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], 1000)
	if _, err := Parse("long", append(lenBuf[:], '{', '}')); err == nil {
		t.Fatal("expected error for header longer than file")
	}
}

func TestParseInvalidJSON(t *testing.T) {
	t.Parallel()

	bad := []byte("{not json")
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(bad)))
	if _, err := Parse("bad", append(lenBuf[:], bad...)); err == nil {
		t.Fatal("expected error for invalid header")
	}
}

func TestParseInvalidOffsets(t *testing.T) {
	t.Parallel()

	tests := map[string][]int64{
		"single offset":  {0},
		"inverted":       {8, 4},
		"past data end":  {0, 64},
		"negative start": {-4, 0},
	}
	for name, offsets := range tests {
		blob := buildBlob(t, map[string]any{
			"x": map[string]any{"dtype": "F32", "shape": []int{1}, "data_offsets": offsets},
		}, make([]byte, 8))
		if _, err := Parse(name, blob); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestTensorNotFound(t *testing.T) {
	t.Parallel()

	sf, err := Parse("empty", buildBlob(t, map[string]any{}, nil))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := sf.Tensor("missing"); ok {
		t.Fatal("expected missing tensor")
	}
	if _, _, err := sf.ReadTensorF32("missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if err := sf.Close(); err != nil {
		t.Fatalf("Close on in-memory file: %v", err)
	}
}

func TestReadTensorHalfPrecision(t *testing.T) {
	t.Parallel()

	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data[0:], 0x3F80) // bf16 1.0
	binary.LittleEndian.PutUint16(data[2:], 0x4000) // bf16 2.0
	binary.LittleEndian.PutUint16(data[4:], 0x3C00) // f16 1.0
	binary.LittleEndian.PutUint16(data[6:], 0xBC00) // f16 -1.0
	blob := buildBlob(t, map[string]any{
		"b": map[string]any{"dtype": "BF16", "shape": []int{2}, "data_offsets": []int64{0, 4}},
		"h": map[string]any{"dtype": "F16", "shape": []int{2}, "data_offsets": []int64{4, 8}},
		"q": map[string]any{"dtype": "I8", "shape": []int{4}, "data_offsets": []int64{0, 4}},
		"s": map[string]any{"dtype": "F32", "shape": []int{3}, "data_offsets": []int64{0, 8}},
	}, data)

	sf, err := Parse("half", blob)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, _, err := sf.ReadTensorF32("b")
	if err != nil || b[0] != 1 || b[1] != 2 {
		t.Fatalf("bf16: got %v, %v", b, err)
	}
	h, _, err := sf.ReadTensorF32("h")
	if err != nil || h[0] != 1 || h[1] != -1 {
		t.Fatalf("f16: got %v, %v", h, err)
	}
	if _, _, err := sf.ReadTensorF32("q"); err == nil {
		t.Fatal("expected unsupported dtype error")
	}
	if _, _, err := sf.ReadTensorF32("s"); err == nil {
		t.Fatal("expected size mismatch error")
	}
}

func TestNumElements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shape    []int
		expected int
		wantErr  bool
	}{
		{[]int{2, 3}, 6, false},
		{[]int{1}, 1, false},
		{[]int{4, 5, 6}, 120, false},
		{[]int{}, 0, true},
		{[]int{0}, 0, true},
		{[]int{2, -1}, 0, true},
	}

	for _, tc := range tests {
		n, err := numElements(tc.shape)
		if tc.wantErr {
			if err == nil {
				t.Errorf("numElements(%v): expected error", tc.shape)
			}
			continue
		}
		if err != nil {
			t.Errorf("numElements(%v): unexpected error: %v", tc.shape, err)
			continue
		}
		if n != tc.expected {
			t.Errorf("numElements(%v): expected %d, got %d", tc.shape, tc.expected, n)
		}
	}
}

func TestFp16ToFloat32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    uint16
		expected float32
	}{
		{0x3C00, 1.0},
		{0x4000, 2.0},
		{0x0000, 0.0},
		{0x8000, math.Float32frombits(0x80000000)},
		{0x0001, float32(math.Ldexp(1, -24))}, // smallest subnormal
		{0x7C00, float32(math.Inf(1))},
	}

	for _, tc := range tests {
		result := fp16ToFloat32(tc.input)
		if result != tc.expected {
			t.Errorf("fp16ToFloat32(0x%04X): expected %g, got %g", tc.input, tc.expected, result)
		}
	}
}
