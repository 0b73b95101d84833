package inference

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// PrepareInput populates dst with the image in planar CHW layout, resized to
// size x size and normalized to [0, 1]. Called before every inference run.
//
// Arguments:
//   - img: The image to prepare.
//   - dst: The destination tensor to populate.
//   - size: The square model input resolution.
//
// Returns:
//   - error: An error if dst cannot hold a 3-channel image of that size.
func PrepareInput(img image.Image, dst *ort.Tensor[float32], size int) error {
	data := dst.GetData()
	channelSize := size * size
	if len(data) < channelSize*3 {
		return errors.Errorf("destination tensor holds %d floats, need %d for a 3x%dx%d image",
			len(data), channelSize*3, size, size)
	}
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	img = resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}
