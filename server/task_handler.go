package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"loopcut/core/merge"
	"loopcut/core/split"
	"loopcut/logger"
	"loopcut/taskerr"
)

// TaskHandler dispatches the task envelope to the split and merge
// pipelines.
type TaskHandler struct {
	splitter *split.Processor
	merger   *merge.Merger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(splitter *split.Processor, merger *merge.Merger) *TaskHandler {
	return &TaskHandler{splitter: splitter, merger: merger}
}

// HandleTask accepts the dispatch envelope: {"task": ..., "input": {...}}
// with the payload either nested under "input" or flat at the root.
func (h *TaskHandler) HandleTask(w http.ResponseWriter, r *http.Request) {
	data, err := decodePayload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	task := strings.TrimSpace(asString(data["task"]))
	switch task {
	case "split_audio":
		h.runSplit(r.Context(), w, task, data)
	case "merge_videos":
		h.runMerge(r.Context(), w, task, data)
	case "":
		writeError(w, taskerr.New(taskerr.CodeValidation, "missing 'task' ('split_audio' or 'merge_videos')"))
	default:
		writeError(w, taskerr.New(taskerr.CodeValidation, "invalid 'task' value, use 'split_audio' or 'merge_videos'"))
	}
}

// HandleSplit is the direct form of the split_audio task.
func (h *TaskHandler) HandleSplit(w http.ResponseWriter, r *http.Request) {
	data, err := decodePayload(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.runSplit(r.Context(), w, "split_audio", data)
}

// HandleMerge is the direct form of the merge_videos task.
func (h *TaskHandler) HandleMerge(w http.ResponseWriter, r *http.Request) {
	data, err := decodePayload(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.runMerge(r.Context(), w, "merge_videos", data)
}

func (h *TaskHandler) runSplit(ctx context.Context, w http.ResponseWriter, task string, data map[string]interface{}) {
	req, err := decodeSplitRequest(data)
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := h.splitter.Process(ctx, req)
	if err != nil {
		logger.Error("split task failed",
			logger.String("audioUrl", req.AudioURL),
			logger.ErrorField(err))
		writeError(w, err)
		return
	}
	writeOK(w, task, results)
}

func (h *TaskHandler) runMerge(ctx context.Context, w http.ResponseWriter, task string, data map[string]interface{}) {
	req, err := decodeMergeRequest(data)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.merger.Merge(ctx, req)
	if err != nil {
		logger.Error("merge task failed",
			logger.Int("videos", len(req.Videos)),
			logger.ErrorField(err))
		writeError(w, err)
		return
	}
	writeOK(w, task, result)
}

// decodePayload reads the request body and unwraps the dispatch envelope:
// the payload normally arrives under "input", but a flat root payload is
// accepted too.
func decodePayload(r *http.Request) (map[string]interface{}, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, taskerr.Wrap(taskerr.CodeValidation, err, "invalid JSON body")
	}

	if input, ok := data["input"].(map[string]interface{}); ok {
		// Carry a root-level task down into the payload when the
		// envelope puts them at different depths.
		if _, has := input["task"]; !has {
			if t, ok := data["task"]; ok {
				input["task"] = t
			}
		}
		return input, nil
	}
	return data, nil
}

func decodeSplitRequest(data map[string]interface{}) (*split.Request, error) {
	if _, ok := data["segments"]; !ok {
		return nil, taskerr.New(taskerr.CodeValidation, "missing 'segments' (int >= 1)")
	}
	if _, ok := data["audio_url"]; !ok {
		return nil, taskerr.New(taskerr.CodeValidation, "missing 'audio_url' (http/https)")
	}

	segments, err := asInt(data["segments"])
	if err != nil {
		return nil, taskerr.New(taskerr.CodeValidation, "'segments' must be an integer")
	}

	req := &split.Request{
		Segments:      segments,
		AudioURL:      asString(data["audio_url"]),
		Codec:         asString(data["codec"]),
		Quality:       asString(data["quality"]),
		Ext:           asString(data["ext"]),
		FirstInverted: asBool(data["first_inverted"], false),
		VideoURL:      asString(data["video_url"]),
		Prefix:        asString(data["r2_prefix"]),
	}

	if v, ok := data["video_duration"]; ok && v != nil {
		dur, err := asFloat(v)
		if err != nil {
			return nil, taskerr.New(taskerr.CodeValidation, "'video_duration' must be a number")
		}
		req.VideoDuration = &dur
	}
	return req, nil
}

func decodeMergeRequest(data map[string]interface{}) (*merge.Request, error) {
	rawVideos, ok := data["videos"].([]interface{})
	if !ok || len(rawVideos) < 2 {
		return nil, taskerr.New(taskerr.CodeValidation, "provide at least two URLs in 'videos' (list)")
	}

	videos := make([]string, 0, len(rawVideos))
	for _, v := range rawVideos {
		videos = append(videos, asString(v))
	}

	req := &merge.Request{
		Videos:          videos,
		OutputKeyPrefix: asString(data["output_key_prefix"]),
		CRF:             asString(data["crf"]),
		Preset:          asString(data["preset"]),
		AACBitrate:      asString(data["aac_bitrate"]),
	}
	reencode := asBool(data["reencode"], true)
	req.Reencode = &reencode
	return req, nil
}

// asString renders scalar JSON values as strings; numbers keep their
// literal form.
func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// asBool coerces the loose boolean forms task callers send: real booleans,
// numbers, and the usual truthy strings.
func asBool(v interface{}, fallback bool) bool {
	switch t := v.(type) {
	case nil:
		return fallback
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return fallback
		}
		return f != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off", "":
			return false
		}
		return fallback
	default:
		return fallback
	}
}

func asInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			// Accept "3.0" style numbers too.
			f, ferr := t.Float64()
			if ferr != nil || f != float64(int(f)) {
				return 0, err
			}
			return int(f), nil
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, err
		}
		return i, nil
	default:
		return 0, fmt.Errorf("not an integer: %v", v)
	}
}

func asFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func writeOK(w http.ResponseWriter, task string, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":     true,
		"task":   task,
		"result": result,
	})
}

func writeError(w http.ResponseWriter, err error) {
	code := taskerr.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(taskerr.HTTPStatus(code))
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok": false,
		"error": map[string]interface{}{
			"code":    string(code),
			"message": taskerr.MessageOf(err),
		},
	})
}
