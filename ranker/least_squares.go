package ranker

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/metrics"
	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// LeastSquares は最小二乗法で線形ランキング関数を学習するモデル
type LeastSquares struct {
	state        *model.StateManager
	fitIntercept bool
	linear       *Linear
}

// Option はLeastSquaresの設定オプション
type Option func(*LeastSquares)

// WithFitIntercept は切片の学習有無を設定
func WithFitIntercept(fit bool) Option {
	return func(ls *LeastSquares) {
		ls.fitIntercept = fit
	}
}

// NewLeastSquares は新しいLeastSquaresモデルを作成
func NewLeastSquares(options ...Option) *LeastSquares {
	ls := &LeastSquares{
		state:        model.NewStateManager(),
		fitIntercept: true,
	}
	for _, opt := range options {
		opt(ls)
	}
	return ls
}

// Fit はQR分解で係数を求める
func (ls *LeastSquares) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("LeastSquares.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LeastSquares.Fit", 1, yCols, 1)
	}

	offset := 0
	if ls.fitIntercept {
		offset = 1
	}
	if rows < cols+offset {
		return errors.NewValidationError("X", "least squares needs at least as many rows as coefficients", rows)
	}

	// [1 | X] の行列を作成
	design := mat.NewDense(rows, cols+offset, nil)
	for i := 0; i < rows; i++ {
		if ls.fitIntercept {
			design.Set(i, 0, 1)
		}
		for j := 0; j < cols; j++ {
			design.Set(i, j+offset, X.At(i, j))
		}
	}

	var qr mat.QR
	qr.Factorize(design)
	coef := mat.NewDense(cols+offset, 1, nil)
	if err := qr.SolveTo(coef, false, y); err != nil {
		return errors.Wrap(err, "LeastSquares.Fit: failed to solve linear system")
	}

	weights := make([]float64, cols)
	for j := range weights {
		weights[j] = coef.At(j+offset, 0)
	}
	intercept := 0.0
	if ls.fitIntercept {
		intercept = coef.At(0, 0)
	}
	linear, err := NewLinear(weights, intercept)
	if err != nil {
		return err
	}
	ls.linear = linear
	ls.state.SetFitted(cols, rows)
	return nil
}

// Predict は入力データに対する予測を1列の行列で返す
func (ls *LeastSquares) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := ls.state.RequireFitted("LeastSquares", "Predict"); err != nil {
		return nil, err
	}
	scores, err := ls.linear.Scores(mat.DenseCopyOf(X))
	if err != nil {
		return nil, err
	}
	return mat.NewDense(len(scores), 1, scores), nil
}

// Score は決定係数R²を返す
func (ls *LeastSquares) Score(X mat.Matrix, y []float64) (float64, error) {
	pred, err := ls.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, mat.Col(nil, 0, pred))
}

// Weights は学習された重み係数を返す
func (ls *LeastSquares) Weights() []float64 {
	if ls.linear == nil {
		return nil
	}
	return ls.linear.Weights()
}

// Intercept は学習された切片を返す
func (ls *LeastSquares) Intercept() float64 {
	if ls.linear == nil {
		return 0
	}
	return ls.linear.Intercept()
}

// Linear は学習済みの線形ランキング関数を返す
func (ls *LeastSquares) Linear() (*Linear, error) {
	if err := ls.state.RequireFitted("LeastSquares", "Linear"); err != nil {
		return nil, err
	}
	return ls.linear, nil
}

// FitLinear fits a least squares ranker of y on X and returns it as a
// Linear ranker.
func FitLinear(X mat.Matrix, y []float64) (*Linear, error) {
	if len(y) == 0 {
		return nil, errors.NewValidationError("y", "labels are required to fit a ranker", 0)
	}
	ls := NewLeastSquares()
	if err := ls.Fit(X, mat.NewVecDense(len(y), append([]float64(nil), y...))); err != nil {
		return nil, err
	}
	return ls.Linear()
}

var (
	_ model.Fitter      = (*LeastSquares)(nil)
	_ model.Predictor   = (*LeastSquares)(nil)
	_ model.LinearModel = (*LeastSquares)(nil)
	_ model.LinearModel = (*Linear)(nil)
)
