package picture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newPicture(width, height, strideY, strideUV int) Picture {
	p := Picture{
		Width:   width,
		Height:  height,
		Format:  FormatI420,
		Strides: [2]int{strideY, strideUV},
		Y:       make([]byte, height*strideY),
		U:       make([]byte, height*strideUV/2),
		V:       make([]byte, height*strideUV/2),
	}
	for i := range p.Y {
		p.Y[i] = byte(i)
	}
	for i := range p.U {
		p.U[i] = byte(100 + i)
		p.V[i] = byte(200 + i)
	}
	return p
}

func TestValidate(t *testing.T) {
	for _, ca := range []struct {
		name string
		pic  Picture
		ok   bool
	}{
		{"tight", newPicture(4, 4, 4, 2), true},
		{"padded", newPicture(4, 4, 8, 6), true},
		{"luma stride too small", newPicture(4, 4, 3, 2), false},
		{"chroma stride too small", newPicture(4, 4, 4, 1), false},
		{"zero size", Picture{Strides: [2]int{4, 2}}, false},
		{"short luma", func() Picture {
			p := newPicture(4, 4, 4, 2)
			p.Y = p.Y[:10]
			return p
		}(), false},
		{"short chroma", func() Picture {
			p := newPicture(4, 4, 4, 2)
			p.V = p.V[:1]
			return p
		}(), false},
	} {
		t.Run(ca.name, func(t *testing.T) {
			err := ca.pic.Validate()
			if ca.ok {
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, ErrInvalid), "got %v", err)
			}
		})
	}
}

func TestValidateOddHeight(t *testing.T) {
	p := Picture{
		Width:   3,
		Height:  3,
		Strides: [2]int{3, 2},
		Y:       make([]byte, 9),
		U:       make([]byte, 4),
		V:       make([]byte, 4),
	}
	require.NoError(t, p.Validate())
}

func TestClone(t *testing.T) {
	p := newPicture(4, 2, 6, 4)
	p.Lease = NewLease()

	c := p.Clone()
	p.Lease.Expire()
	p.Y[0] = 0xFF

	require.False(t, p.Valid())
	require.True(t, c.Valid())
	require.Nil(t, c.Lease)
	require.Equal(t, byte(0), c.Y[0])
	require.Equal(t, p.Strides, c.Strides)
}

func TestPacked(t *testing.T) {
	p := newPicture(2, 2, 4, 3)

	require.Equal(t, []byte{
		0, 1, 4, 5, // Y rows without padding
		100, // U
		200, // V
	}, p.Packed())
}

func TestYCbCr(t *testing.T) {
	p := newPicture(4, 4, 8, 4)

	img := p.YCbCr()
	require.Equal(t, 4, img.Rect.Dx())
	require.Equal(t, 4, img.Rect.Dy())
	require.Equal(t, p.Y[8+1], img.Y[img.YOffset(1, 1)])
	require.Equal(t, p.U[4+1], img.Cb[img.COffset(3, 2)])
}

func TestNilLease(t *testing.T) {
	var l *Lease
	require.True(t, l.Valid())
	l.Expire()
	require.True(t, l.Valid())
}

func TestFormatString(t *testing.T) {
	require.Equal(t, "i420", FormatI420.String())
	require.Equal(t, "unknown", FormatUnknown.String())
}
