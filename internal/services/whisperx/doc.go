// Package whisperx transcribes speech by running WhisperX through uvx.
//
// Audio is first extracted with ffmpeg to mono 16 kHz WAV; WhisperX then
// writes a JSON file whose segment texts are joined into the transcript.
package whisperx
