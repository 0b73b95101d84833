package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"time"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-filter/filter"
	"github.com/nvr-ai/go-filter/inference"
)

func main() {
	modelPath := flag.String("model", "model.onnx", "path to the ONNX detection model")
	deviceID := flag.Int("device", 0, "video capture device")
	inputSize := flag.Int("size", 640, "square model input resolution")
	maxBoxes := flag.Int("boxes", 8400, "number of candidate rows the model emits")
	numClasses := flag.Int("classes", 80, "number of classes in the model output")
	flag.Parse()

	if err := ort.InitializeEnvironment(); err != nil {
		fmt.Println(err)
		return
	}
	defer ort.DestroyEnvironment()

	session, err := inference.NewSession(inference.Config{
		ModelPath:  *modelPath,
		InputName:  "images",
		OutputName: "output0",
		InputSize:  *inputSize,
		MaxBoxes:   *maxBoxes,
		NumClasses: *numClasses,
		Filter:     filter.DefaultConfig(),
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer session.Close()

	// open webcam
	webcam, err := gocv.OpenVideoCapture(*deviceID)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer webcam.Close()

	// open display window
	window := gocv.NewWindow("Detections")
	defer window.Close()

	// prepare image matrix
	img := gocv.NewMat()
	defer img.Close()

	// color for the rect around kept detections
	blue := color.RGBA{0, 0, 255, 0}

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	fmt.Printf("start reading camera device: %v\n", *deviceID)
	for {
		if ok := webcam.Read(&img); !ok {
			fmt.Printf("cannot read device %v\n", *deviceID)
			return
		}
		if img.Empty() {
			continue
		}

		// Update FPS calculation
		frameCount++
		currentTime := time.Now()
		elapsed := currentTime.Sub(lastTime).Seconds()

		// Calculate FPS every second
		if elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = currentTime
		}

		frame, err := img.ToImage()
		if err != nil {
			fmt.Println(err)
			continue
		}

		detections, err := session.Detect(frame)
		if err != nil {
			fmt.Println(err)
			return
		}

		// Scale boxes from model input coordinates back to the frame.
		sx := float32(img.Cols()) / float32(*inputSize)
		sy := float32(img.Rows()) / float32(*inputSize)
		for i := 0; i < detections.Count; i++ {
			b := detections.Boxes[i]
			r := image.Rect(int(b.X1*sx), int(b.Y1*sy), int(b.X2*sx), int(b.Y2*sy))
			gocv.Rectangle(&img, r, blue, 2)
			label := fmt.Sprintf("%d %.2f", detections.Labels[i], detections.Scores[i])
			gocv.PutText(&img, label, image.Pt(r.Min.X, r.Min.Y-4), gocv.FontHersheyPlain, 1.2, blue, 2)
		}

		fmt.Printf("kept %d detections | FPS: %.2f\n", detections.Count, fps)

		// show the image in the window, and wait 1 millisecond
		window.IMShow(img)
		window.WaitKey(1)
	}
}
