// Package errors はSHARP全体のエラーハンドリングを提供します。
// 設定エラー・入力検証エラー・計算エラーを構造化された型として表現し、
// cockroachdb/errors によるスタックトレースを付与します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("SHARP-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// SampleSizeWarning は要求されたサンプルサイズが参照集合に合わせて切り詰められた場合の警告です。
type SampleSizeWarning struct {
	Requested int
	Used      int
	Reason    string
}

func (w *SampleSizeWarning) Error() string {
	return fmt.Sprintf("sample_size %d reduced to %d: %s", w.Requested, w.Used, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *SampleSizeWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("requested", w.Requested).
		Int("used", w.Used).
		Str("reason", w.Reason).
		Str("type", "SampleSizeWarning")
}

// NewSampleSizeWarning は新しいSampleSizeWarningを作成します。
func NewSampleSizeWarning(requested, used int, reason string) *SampleSizeWarning {
	return &SampleSizeWarning{Requested: requested, Used: used, Reason: reason}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// ConfigurationError は設定が解決できない場合のエラーです。
// 未知のQoI名・未知のmeasure名・範囲外のsample_size/coalition_size・
// 行と参照集合の列数不一致などで発生します。
type ConfigurationError struct {
	Param  string
	Reason string
	Value  interface{}
}

func (e *ConfigurationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("sharp: invalid configuration for '%s': %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("sharp: invalid configuration for '%s': %s (got: %v)", e.Param, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param", e.Param).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ConfigurationError")
}

// NewConfigurationError は新しいConfigurationErrorを作成し、スタックトレースを付与します。
func NewConfigurationError(param, reason string, value interface{}) error {
	err := &ConfigurationError{Param: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// NotFittedError は未学習のセッションで計算を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("sharp: %s: this explainer is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
// 設定エラーの一種として扱われ、ConfigurationErrorとしても判定できます。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("sharp: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
// 返されるエラーはConfigurationErrorでもラップされます。
func NewDimensionError(op string, expected, got, axis int) error {
	dimErr := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	cfgErr := &ConfigurationError{Param: "shape", Reason: dimErr.Error()}
	return errors.WithStack(&shapeError{dim: dimErr, cfg: cfgErr})
}

// shapeError はDimensionErrorとConfigurationErrorの両方としてAs可能なエラーです。
type shapeError struct {
	dim *DimensionError
	cfg *ConfigurationError
}

func (e *shapeError) Error() string { return e.dim.Error() }

func (e *shapeError) As(target interface{}) bool {
	switch t := target.(type) {
	case **DimensionError:
		*t = e.dim
		return true
	case **ConfigurationError:
		*t = e.cfg
		return true
	}
	return false
}

// ValidationError は入力テーブルの検証に失敗した場合のエラーです。
// 行列の形状不正・非数値・行数とラベル数の不一致などで発生します。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sharp: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ComputationError はランキング関数が不整合な結果やNaNを返した場合のエラーです。
type ComputationError struct {
	Op     string
	Reason string
	Values []float64
}

func (e *ComputationError) Error() string {
	if len(e.Values) == 0 {
		return fmt.Sprintf("sharp: %s: %s", e.Op, e.Reason)
	}
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("sharp: %s: %s. Values: [%s]", e.Op, e.Reason, valStr)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ComputationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Floats64("values", e.Values).
		Str("type", "ComputationError")
}

// NewComputationError は新しいComputationErrorを作成し、スタックトレースを付与します。
func NewComputationError(op, reason string, values []float64) error {
	err := &ComputationError{Op: op, Reason: reason, Values: values}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// Mark はerrにreferenceの識別情報を付与します。Is(err, reference)がtrueになり、
// 元のエラー型もAsで取り出せます。
func Mark(err, reference error) error {
	return errors.Mark(err, reference)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrNoQoI はQoI名もカスタム関数も与えられなかった場合のエラーです。
	ErrNoQoI = New("no quantity of interest could be resolved")
)
