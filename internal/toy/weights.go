package toy

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/samcharles93/gpt2gen/internal/safetensors"
)

const (
	tensorEmb  = "emb"
	tensorW    = "w"
	tensorBias = "bias"
)

// Save writes the weights in safetensors format.
func (m *ToyLM) Save(w io.Writer) error {
	return safetensors.Write(w, map[string]string{
		"format": "toy",
		"vocab":  strconv.Itoa(m.Vocab),
		"hidden": strconv.Itoa(m.Hidden),
	},
		safetensors.Tensor{Name: tensorEmb, Shape: []int{m.Vocab, m.Hidden}, Data: m.Emb},
		safetensors.Tensor{Name: tensorW, Shape: []int{m.Hidden, m.Vocab}, Data: m.W},
		safetensors.Tensor{Name: tensorBias, Shape: []int{m.Vocab}, Data: m.Bias},
	)
}

// SaveFile writes the weights to path.
func (m *ToyLM) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return m.Save(f)
}

// LoadFile reads weights saved by Save. The sequence length is not part of
// the weights and is given by the caller.
func LoadFile(path string, seqLen int) (*ToyLM, error) {
	sf, err := safetensors.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toy model: %w", err)
	}
	defer func() { _ = sf.Close() }()
	return FromSafetensors(sf, seqLen)
}

func FromSafetensors(sf *safetensors.File, seqLen int) (*ToyLM, error) {
	if seqLen <= 0 {
		return nil, fmt.Errorf("toy model: invalid sequence length %d", seqLen)
	}
	emb, embInfo, err := sf.ReadTensorF32(tensorEmb)
	if err != nil {
		return nil, fmt.Errorf("toy model: %w", err)
	}
	if len(embInfo.Shape) != 2 {
		return nil, fmt.Errorf("toy model: %s must be 2-D, got %v", tensorEmb, embInfo.Shape)
	}
	vocab, hidden := embInfo.Shape[0], embInfo.Shape[1]

	w, wInfo, err := sf.ReadTensorF32(tensorW)
	if err != nil {
		return nil, fmt.Errorf("toy model: %w", err)
	}
	if len(wInfo.Shape) != 2 || wInfo.Shape[0] != hidden || wInfo.Shape[1] != vocab {
		return nil, fmt.Errorf("toy model: %s shape %v, want [%d %d]", tensorW, wInfo.Shape, hidden, vocab)
	}

	bias, bInfo, err := sf.ReadTensorF32(tensorBias)
	if err != nil {
		return nil, fmt.Errorf("toy model: %w", err)
	}
	if len(bInfo.Shape) != 1 || bInfo.Shape[0] != vocab {
		return nil, fmt.Errorf("toy model: %s shape %v, want [%d]", tensorBias, bInfo.Shape, vocab)
	}

	return &ToyLM{
		Vocab:  vocab,
		Hidden: hidden,
		SeqLen: seqLen,
		Emb:    emb,
		W:      w,
		Bias:   bias,
	}, nil
}
