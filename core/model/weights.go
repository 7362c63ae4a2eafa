package model

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// ModelWeights は線形ランキング関数の重みを表す構造体（シリアライゼーション用）
type ModelWeights struct {
	// ModelType はモデルの種類（Linear, LeastSquares等）
	ModelType string `json:"model_type"`

	// Version はモデルのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Coefficients は重み係数
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`

	// Features は特徴量の名前（オプション）
	Features []string `json:"features,omitempty"`

	// Metadata は追加のメタデータ（学習時の統計等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "model weights: decode")
	}
	return nil
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	}
	if len(mw.Coefficients) == 0 {
		return errors.NewValidationError("coefficients", "at least one coefficient is required", 0)
	}
	if len(mw.Features) > 0 && len(mw.Features) != len(mw.Coefficients) {
		return errors.NewValidationError("features", "one feature name per coefficient is required", len(mw.Features))
	}
	if err := errors.CheckNumericalStability("ModelWeights.Validate", mw.Coefficients); err != nil {
		return err
	}
	return errors.CheckScalar("ModelWeights.Validate", mw.Intercept)
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:    mw.ModelType,
		Version:      mw.Version,
		Intercept:    mw.Intercept,
		Coefficients: append([]float64(nil), mw.Coefficients...),
		Features:     append([]string(nil), mw.Features...),
	}
	if mw.Metadata != nil {
		clone.Metadata = make(map[string]interface{}, len(mw.Metadata))
		for k, v := range mw.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

// SaveWeights は重みをJSONファイルに保存する
func SaveWeights(mw *ModelWeights, path string) error {
	data, err := mw.ToJSON()
	if err != nil {
		return errors.Wrap(err, "model weights: encode")
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		return errors.Wrapf(err, "model weights: write %s", path)
	}
	return nil
}

// LoadWeights はJSONファイルから重みを読み込み、検証する
func LoadWeights(path string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "model weights: read %s", path)
	}
	mw := &ModelWeights{}
	if err := mw.FromJSON(data); err != nil {
		return nil, err
	}
	if err := mw.Validate(); err != nil {
		return nil, err
	}
	return mw, nil
}
