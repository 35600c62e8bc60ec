package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	r, err := EmptyTuning().Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.01, r.DLSEta)
	assert.Equal(t, 1.0, r.DefaultJointVelocity)
	assert.Equal(t, 1e-6, r.InfeasibilityTolerance)
	assert.Equal(t, "localhost:50061", r.VisualizerListenAddr)
	assert.True(t, r.MonitoringActive)
	assert.Equal(t, 10.0, r.MonitoringPublishRate)
	assert.Equal(t, "10ms", r.TickInterval)
	assert.Empty(t, r.Joints)
	assert.Empty(t, r.PreloadJointLimits)
	assert.Empty(t, r.PreloadGeometricPrimitives)
	assert.Empty(t, r.PreloadTasks)
}

func TestResolveMonitoringOverrides(t *testing.T) {
	tn := &Tuning{Monitoring: Monitoring{Active: ptrBool(false), PublishRate: ptrFloat64(25.0)}}
	r, err := tn.Resolve()
	require.NoError(t, err)
	assert.False(t, r.MonitoringActive)
	assert.Equal(t, 25.0, r.MonitoringPublishRate)
}

func TestResolveRejectsNonPositivePublishRate(t *testing.T) {
	tn := &Tuning{Monitoring: Monitoring{PublishRate: ptrFloat64(0)}}
	_, err := tn.Resolve()
	assert.Error(t, err)
}

func TestResolvePassesThroughJointsAndPreloads(t *testing.T) {
	tn := &Tuning{
		Joints:           []string{"j1", "j2"},
		RobotDescription: "- name: base\n  type: fixed\n",
		PreloadJointLimits: []JointLimitPreload{
			{JointName: "j1", QMin: -1, QMax: 1, DQMax: 2},
		},
		PreloadGeometricPrimitives: []PrimitivePreload{
			{Name: "A", Type: "Point", FrameID: "ee", Params: []string{"0", "0", "0"}},
		},
		PreloadTasks: []TaskPreload{
			{Name: "hold", Type: "JointConfiguration", DynType: "FirstOrder", Priority: 1, Active: true},
		},
	}
	r, err := tn.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j2"}, r.Joints)
	assert.Equal(t, "- name: base\n  type: fixed\n", r.RobotDescription)
	require.Len(t, r.PreloadJointLimits, 1)
	assert.Equal(t, "j1", r.PreloadJointLimits[0].JointName)
	require.Len(t, r.PreloadGeometricPrimitives, 1)
	assert.Equal(t, "A", r.PreloadGeometricPrimitives[0].Name)
	require.Len(t, r.PreloadTasks, 1)
	assert.Equal(t, "hold", r.PreloadTasks[0].Name)
}

func TestResolveOverridesAndValidates(t *testing.T) {
	tn := &Tuning{DLSEta: ptrFloat64(0.05), OracleEndpoint: ptrString("sdf.local:9000")}
	r, err := tn.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.05, r.DLSEta)
	assert.Equal(t, "sdf.local:9000", r.OracleEndpoint)
}

func TestResolveRejectsNegativeEta(t *testing.T) {
	tn := &Tuning{DLSEta: ptrFloat64(-1)}
	_, err := tn.Resolve()
	assert.Error(t, err)
}

func TestResolveRejectsNonPositiveVelocityCap(t *testing.T) {
	tn := &Tuning{DefaultJointVelocity: ptrFloat64(0)}
	_, err := tn.Resolve()
	assert.Error(t, err)
}

func TestLoaderLoadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dls_eta: 0.2\noracle_endpoint: \"sdf:9000\"\n"), 0o644))

	l := NewLoader(path)
	var got Resolved
	l.OnReload(func(r Resolved) { got = r })

	r, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 0.2, r.DLSEta)
	assert.Equal(t, "sdf:9000", r.OracleEndpoint)
	assert.Equal(t, r, got)
}

func TestLoaderLoadsStartupConfigSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	body := `
joints: ["j1", "j2"]
robot_description: "- name: base\n  type: fixed\n"
monitoring:
  active: false
  publish_rate: 5.0
preload_joint_limits:
  - joint_name: j1
    q_min: -1.0
    q_max: 1.0
    dq_max: 2.0
preload_geometric_primitives:
  - name: A
    type: Point
    frame_id: ee
    params: ["0", "0", "0"]
preload_tasks:
  - name: hold
    type: JointConfiguration
    dyn_type: FirstOrder
    priority: 1
    active: true
    def_params: ["j1", "0.0"]
    dyn_params: ["1.0"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	r, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j2"}, r.Joints)
	assert.Equal(t, "- name: base\n  type: fixed\n", r.RobotDescription)
	assert.False(t, r.MonitoringActive)
	assert.Equal(t, 5.0, r.MonitoringPublishRate)
	require.Len(t, r.PreloadJointLimits, 1)
	assert.Equal(t, "j1", r.PreloadJointLimits[0].JointName)
	require.Len(t, r.PreloadGeometricPrimitives, 1)
	assert.Equal(t, "Point", r.PreloadGeometricPrimitives[0].Type)
	require.Len(t, r.PreloadTasks, 1)
	assert.Equal(t, "hold", r.PreloadTasks[0].Name)
	assert.True(t, r.PreloadTasks[0].Active)
}

func TestLoaderMissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := l.Load()
	assert.Error(t, err)
}
