package cmdsurface

// setTaskRequest mirrors spec.md's set_task call.
type setTaskRequest struct {
	Type      string   `json:"type" binding:"required"`
	DynType   string   `json:"dyn_type" binding:"required"`
	Priority  int      `json:"priority"`
	Visible   bool     `json:"visible"`
	Active    bool     `json:"active"`
	Monitored bool     `json:"monitored"`
	DefParams []string `json:"def_params"`
	DynParams []string `json:"dyn_params"`
}

// setPrimitiveRequest mirrors spec.md's set_primitive call.
type setPrimitiveRequest struct {
	Type    string     `json:"type" binding:"required"`
	FrameID string     `json:"frame_id" binding:"required"`
	Visible bool       `json:"visible"`
	Color   [4]float64 `json:"color"`
	Params  []string   `json:"params" binding:"required"`
}

type okResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type taskInfoResponse struct {
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	Active    bool   `json:"active"`
	Monitored bool   `json:"monitored"`
}

type primitiveInfoResponse struct {
	Name    string `json:"name"`
	Kind    string `json:"type"`
	FrameID string `json:"frame_id"`
	Visible bool   `json:"visible"`
}

type measuresResponse struct {
	Name     string    `json:"name"`
	Measures []float64 `json:"performance_measures"`
}

type telemetryResponse struct {
	Name     string    `json:"name"`
	E        []float64 `json:"e"`
	EDotStar []float64 `json:"e_dot_star"`
	Measures []float64 `json:"performance_measures"`
}
