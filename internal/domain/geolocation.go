package domain

// GeolocationFailure classifies why the browser's geolocation provider
// could not deliver a position. Each kind gets its own user-facing message;
// none of them is fatal, the proximity filter simply stays disabled.
type GeolocationFailure string

const (
	GeoPermissionDenied GeolocationFailure = "permission_denied"
	GeoUnavailable      GeolocationFailure = "unavailable"
	GeoTimeout          GeolocationFailure = "timeout"
	GeoUnknown          GeolocationFailure = "unknown"
)

// ParseGeolocationFailure maps an arbitrary reported kind onto the known
// set, folding anything unrecognized into GeoUnknown.
func ParseGeolocationFailure(kind string) GeolocationFailure {
	switch GeolocationFailure(kind) {
	case GeoPermissionDenied, GeoUnavailable, GeoTimeout:
		return GeolocationFailure(kind)
	}
	return GeoUnknown
}

// Message returns the user-facing notice for this failure kind.
func (f GeolocationFailure) Message() string {
	switch f {
	case GeoPermissionDenied:
		return "位置情報の利用が許可されていません。ブラウザの設定をご確認ください。"
	case GeoUnavailable:
		return "現在地を取得できませんでした。"
	case GeoTimeout:
		return "現在地の取得がタイムアウトしました。"
	default:
		return "現在地の取得中にエラーが発生しました。"
	}
}
