package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/motion.report/internal/capture"
	"github.com/banshee-data/motion.report/internal/clip"
	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/synth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type sessionStatus struct {
	State     string `json:"state"`
	SessionID string `json:"session_id,omitempty"`
	Recording bool   `json:"recording"`
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	status := sessionStatus{State: string(capture.StateIdle)}
	if sess := s.Session(); sess != nil {
		status.State = string(sess.State())
		status.SessionID = sess.ID()
		status.Recording = sess.Recording()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	mode := capture.ModeFullBody
	if r.URL.Query().Get("mode") == "upper" {
		mode = capture.ModeUpperBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && s.session.State() == capture.StateTracking {
		writeJSONError(w, http.StatusConflict, "session already tracking")
		return
	}
	s.session = capture.NewSession(s.rig, s.stats, s.tuning.CaptureOptions(mode))
	if err := s.session.Start(s.sched); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionStatus{
		State:     string(capture.StateTracking),
		SessionID: s.session.ID(),
	})
}

func (s *Server) handleSessionStop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sess := s.session
	s.session = nil
	s.mu.Unlock()

	if sess == nil {
		writeJSONError(w, http.StatusConflict, "no active session")
		return
	}
	sess.Stop()
	writeJSON(w, http.StatusOK, sessionStatus{State: string(capture.StateIdle)})
}

func (s *Server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	sess := s.Session()
	if sess == nil {
		writeJSONError(w, http.StatusConflict, "no active session")
		return
	}
	cat := capture.Category(r.URL.Query().Get("category"))
	switch cat {
	case capture.CategoryBody, capture.CategoryFace, capture.CategoryLeftHand, capture.CategoryRightHand:
	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", cat))
		return
	}
	sess.Calibrate(cat)
	writeJSON(w, http.StatusOK, map[string]string{"calibrating": string(cat)})
}

// estimateRequest is the JSON form of one estimator frame. Quaternions are
// [x, y, z, w]; positions are [x, y, z] metres.
type estimateRequest struct {
	Category  string                `json:"category"`
	Rotations map[string][4]float64 `json:"rotations"`
	RootPos   *[3]float64           `json:"root_position,omitempty"`
	Landmarks []capture.Landmark2D  `json:"landmarks,omitempty"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	sess := s.Session()
	if sess == nil {
		writeJSONError(w, http.StatusConflict, "no active session")
		return
	}
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "parse estimate: "+err.Error())
		return
	}

	frame := capture.EstimateFrame{
		Category:  capture.Category(req.Category),
		Rotations: make(map[rig.Joint]quat.Number, len(req.Rotations)),
		Landmarks: req.Landmarks,
	}
	for name, v := range req.Rotations {
		j := rig.Joint(name)
		if !rig.Known(j) {
			continue
		}
		frame.Rotations[j] = quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2], Real: v[3]}
	}
	if req.RootPos != nil {
		frame.RootPosition = &r3.Vec{X: req.RootPos[0], Y: req.RootPos[1], Z: req.RootPos[2]}
	}

	sess.Submit(frame)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleRecordingStart(w http.ResponseWriter, r *http.Request) {
	sess := s.Session()
	if sess == nil {
		writeJSONError(w, http.StatusConflict, "no active session")
		return
	}
	if err := sess.StartRecording(); err != nil {
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleRecordingStop(w http.ResponseWriter, r *http.Request) {
	sess := s.Session()
	if sess == nil {
		writeJSONError(w, http.StatusConflict, "no active session")
		return
	}
	c, err := sess.StopRecording()
	if err != nil {
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	}
	id, err := s.store.SaveClip(r.Context(), c)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "clip": c})
}

// synthRequest selects a gesture and overrides any of the tuned defaults.
type synthRequest struct {
	Gesture      string   `json:"gesture"`
	Duration     *float64 `json:"duration,omitempty"`
	FPS          *float64 `json:"fps,omitempty"`
	Frequency    *float64 `json:"frequency,omitempty"`
	Energy       *float64 `json:"energy,omitempty"`
	NoiseScale   *float64 `json:"noise_scale,omitempty"`
	CoreCoupling *float64 `json:"core_coupling,omitempty"`
}

func (s *Server) handleSynthGenerate(w http.ResponseWriter, r *http.Request) {
	var req synthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "parse synth request: "+err.Error())
		return
	}
	gesture := synth.Gesture(req.Gesture)
	switch gesture {
	case synth.GestureWave, synth.GesturePoint, synth.GestureBreath:
	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown gesture %q", req.Gesture))
		return
	}

	cfg := s.tuning.SynthConfig()
	override := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	override(&cfg.Duration, req.Duration)
	override(&cfg.FPS, req.FPS)
	override(&cfg.Frequency, req.Frequency)
	override(&cfg.Energy, req.Energy)
	override(&cfg.NoiseScale, req.NoiseScale)
	override(&cfg.CoreCoupling, req.CoreCoupling)

	c := synth.Generate(rig.NewPose(), gesture, cfg, s.stats)
	id, err := s.store.SaveClip(r.Context(), c)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "clip": c})
}

func (s *Server) handleListClips(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}
	infos, err := s.store.ListClips(r.Context(), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGetClip(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetClip(r.Context(), r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleRetargetClip(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetClip(r.Context(), r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	strip := r.URL.Query().Get("strip_root") != "false"
	out, report, err := clip.Retarget(c, s.rig, clip.RetargetOptions{StripRootPosition: strip})
	if errors.Is(err, clip.ErrEmptyRetarget) {
		// Structurally empty result: playback would leave the rig static.
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  err.Error(),
			"report": report,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clip": out, "report": report})
}

func (s *Server) handleDeleteClip(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteClip(r.Context(), r.PathValue("id")); err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
