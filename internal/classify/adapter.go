package classify

import (
	"fmt"

	"github.com/ayusman/signscribe/internal/label"
	"gocv.io/x/gocv"
)

// Model is a trained classifier. Predict takes an RGB tensor in HWC order
// scaled to [0, 1] and returns one probability per label.
type Model interface {
	Predict(tensor []float32) ([]float64, error)
	Close() error
}

// Adapter turns skeleton canvases into ranked classification results.
type Adapter struct {
	model  Model
	labels []label.Label
}

// NewAdapter creates an adapter over model with the given label order.
func NewAdapter(model Model, labels []label.Label) *Adapter {
	if len(labels) == 0 {
		labels = label.Default()
	}
	return &Adapter{model: model, labels: labels}
}

// Labels returns the label order the model was trained with.
func (a *Adapter) Labels() []label.Label {
	return a.labels
}

// Classify runs the model on a rendered skeleton canvas.
func (a *Adapter) Classify(canvas gocv.Mat) (Result, error) {
	tensor, err := Tensor(canvas)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrClassifierFailure, err)
	}

	probs, err := a.model.Predict(tensor)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrClassifierFailure, err)
	}

	result, err := Decode(probs, a.labels)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrClassifierFailure, err)
	}
	return result, nil
}

// Close releases the model.
func (a *Adapter) Close() error {
	return a.model.Close()
}

// Tensor converts a BGR CV_8UC3 canvas into a flat RGB float32 tensor in
// [0, 1], row-major with channels last.
func Tensor(canvas gocv.Mat) ([]float32, error) {
	if canvas.Empty() || canvas.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("canvas must be a non-empty CV_8UC3 image")
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(canvas, &rgb, gocv.ColorBGRToRGB)

	scaled := gocv.NewMat()
	defer scaled.Close()
	rgb.ConvertToWithParams(&scaled, gocv.MatTypeCV32FC3, 1.0/255.0, 0)

	data, err := scaled.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read tensor: %w", err)
	}

	tensor := make([]float32, len(data))
	copy(tensor, data)
	return tensor, nil
}
