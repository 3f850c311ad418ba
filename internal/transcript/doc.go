// Package transcript turns coarse speech-recognition utterances into short,
// practice-sized segments. It hosts the non-speech filter, the word-band
// segmenter, character-proportional timestamp interpolation, and the
// assembler composing the three.
package transcript
