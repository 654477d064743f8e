package skeleton

import (
	"testing"

	"github.com/ayusman/signscribe/internal/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestNormalize_InRange(t *testing.T) {
	canvas := DefaultCanvas()

	for _, tc := range []struct {
		name string
		hand detector.Hand
	}{
		{"open palm", detector.OpenPalmHand()},
		{"thumbs up", detector.ThumbsUpHand()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sk, err := FromHand(&tc.hand, canvas)
			require.NoError(t, err)

			assert.Len(t, sk.Points, detector.NumLandmarks)
			for i, p := range sk.Points {
				assert.GreaterOrEqual(t, p.X, 0.0, "landmark %d", i)
				assert.GreaterOrEqual(t, p.Y, 0.0, "landmark %d", i)
				assert.Less(t, p.X, float64(canvas.Size), "landmark %d", i)
				assert.Less(t, p.Y, float64(canvas.Size), "landmark %d", i)
			}
		})
	}
}

func TestNormalize_Offset(t *testing.T) {
	var points [detector.NumLandmarks]detector.Point
	for i := range points {
		points[i] = detector.Point{X: 29 + float64(i), Y: 29 + float64(2*i)}
	}

	sk, err := Normalize(points, 200, 151, DefaultCanvas())
	require.NoError(t, err)

	// (400-200)/2 - 15 = 85, (400-151)//2 - 15 = 109
	assert.Equal(t, 85, sk.OffsetX)
	assert.Equal(t, 109, sk.OffsetY)
	assert.Equal(t, detector.Point{X: 29 + 85, Y: 29 + 109}, sk.Points[detector.Wrist])
	assert.Equal(t, detector.Point{X: 49 + 85, Y: 69 + 109}, sk.Points[detector.PinkyTip])
}

func TestNormalize_InvalidBox(t *testing.T) {
	var points [detector.NumLandmarks]detector.Point

	for _, wh := range [][2]int{{0, 10}, {10, 0}, {-5, 20}} {
		_, err := Normalize(points, wh[0], wh[1], DefaultCanvas())
		assert.ErrorIs(t, err, ErrInvalidBox)
	}
}

func TestNormalize_Malformed(t *testing.T) {
	t.Run("hand larger than the canvas", func(t *testing.T) {
		hand := detector.EdgeHand()
		_, err := FromHand(&hand, DefaultCanvas())
		assert.ErrorIs(t, err, ErrMalformedCrop)
	})

	t.Run("point lands exactly on the far edge", func(t *testing.T) {
		var points [detector.NumLandmarks]detector.Point
		// offset is (400-370)/2 - 15 = 0, so x = 400 is out of range
		points[detector.IndexTip] = detector.Point{X: 400, Y: 10}
		_, err := Normalize(points, 370, 370, DefaultCanvas())
		assert.ErrorIs(t, err, ErrMalformedCrop)
	})
}

func TestFloorHalf(t *testing.T) {
	assert.Equal(t, 2, floorHalf(5))
	assert.Equal(t, 0, floorHalf(0))
	assert.Equal(t, -3, floorHalf(-5))
	assert.Equal(t, -2, floorHalf(-4))
}

func TestRender(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	hand := detector.OpenPalmHand()
	sk, err := FromHand(&hand, DefaultCanvas())
	require.NoError(t, err)

	canvas := NewCanvas(sk.Size)
	defer canvas.Close()

	require.NoError(t, Render(sk, &canvas))

	wrist := pixel(sk.Points[detector.Wrist])
	assert.Equal(t, []uint8{0, 0, 255}, canvas.GetVecbAt(wrist.Y, wrist.X), "landmark marker should be red")
	assert.Equal(t, []uint8{255, 255, 255}, canvas.GetVecbAt(0, 0), "background should be white")

	data, err := EncodeJPEG(canvas)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRender_WrongCanvas(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	hand := detector.OpenPalmHand()
	sk, err := FromHand(&hand, DefaultCanvas())
	require.NoError(t, err)

	small := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	defer small.Close()

	assert.Error(t, Render(sk, &small))
}
