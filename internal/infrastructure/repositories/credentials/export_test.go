package credentials

// ReadLine exports readLine for testing.
var ReadLine = readLine //nolint:gochecknoglobals // test export
