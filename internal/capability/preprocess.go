package capability

// StandardPreprocessor is the default source transform. Its default options are empty.
type StandardPreprocessor struct{}

func (StandardPreprocessor) Name() string { return PreprocessorStandard }

func (StandardPreprocessor) DefaultOptions() PreprocessorOptions {
	return PreprocessorOptions{Name: PreprocessorStandard}
}

// NoopPreprocessor disables source transforms entirely.
type NoopPreprocessor struct{}

func (NoopPreprocessor) Name() string { return PreprocessorNone }

func (NoopPreprocessor) DefaultOptions() PreprocessorOptions {
	return PreprocessorOptions{Name: PreprocessorNone}
}
