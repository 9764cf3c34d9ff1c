package videocall

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giygas/telehealth-api/entities"
)

func TestRoomAndStreamIDs(t *testing.T) {
	assert.Equal(t, "med-apt-1", RoomID("apt-1"))

	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "doc-1-1700000000123", StreamID("doc-1", at))
}

func TestCallLifecycle(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	doctor := NewCall("c1", "apt-1", "doc-1", NewSimulatedTransport(hub))
	assert.Equal(t, StateIdle, doctor.State())

	require.NoError(t, doctor.Start(ctx))
	assert.Equal(t, StateConnected, doctor.State())
	assert.True(t, strings.HasPrefix(doctor.Info().LocalStream, "doc-1-"))
	assert.Empty(t, doctor.Info().RemoteStreams)

	assert.ErrorIs(t, doctor.Start(ctx), ErrCallActive)

	patient := NewCall("c2", "apt-1", "pat-1", NewSimulatedTransport(hub))
	require.NoError(t, patient.Start(ctx))

	// the patient joins after the doctor published, so it sees the stream at once
	assert.Equal(t, []string{doctor.Info().LocalStream}, patient.Info().RemoteStreams)

	patientStream := patient.Info().LocalStream
	assert.Eventually(t, func() bool {
		remote := doctor.Info().RemoteStreams
		return len(remote) == 1 && remote[0] == patientStream
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, patient.End(ctx))
	assert.Equal(t, StateEnded, patient.State())
	assert.Empty(t, patient.Info().RemoteStreams)

	assert.Eventually(t, func() bool {
		return len(doctor.Info().RemoteStreams) == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, doctor.End(ctx))
	assert.Equal(t, 0, hub.Participants(RoomID("apt-1")))
}

func TestEndIdleCallIsNoop(t *testing.T) {
	c := NewCall("c1", "apt-1", "doc-1", NewSimulatedTransport(NewHub()))

	require.NoError(t, c.End(context.Background()))
	assert.Equal(t, StateIdle, c.State())
}

func TestCallCanRestartAfterEnd(t *testing.T) {
	ctx := context.Background()
	c := NewCall("c1", "apt-1", "doc-1", NewSimulatedTransport(NewHub()))

	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.End(ctx))
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, StateConnected, c.State())
	require.NoError(t, c.End(ctx))
}

func TestToggles(t *testing.T) {
	c := NewCall("c1", "apt-1", "doc-1", NewSimulatedTransport(NewHub()))

	assert.True(t, c.Info().VideoEnabled)
	assert.False(t, c.ToggleVideo())
	assert.True(t, c.ToggleVideo())

	assert.False(t, c.ToggleAudio())
	assert.False(t, c.Info().AudioEnabled)
	assert.True(t, c.Info().VideoEnabled)
}

type failingTransport struct {
	SimulatedTransport
}

func (*failingTransport) Connect(ctx context.Context, room, userID string) ([]string, error) {
	return nil, errors.New("signaling unavailable")
}

func TestStartConnectFailureReturnsToIdle(t *testing.T) {
	c := NewCall("c1", "apt-1", "doc-1", &failingTransport{})

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "med-apt-1")
	assert.Equal(t, StateIdle, c.State())
}

func TestResolveParticipants(t *testing.T) {
	apt := entities.Appointment{ID: "apt-1", PatientID: "pat-1", DoctorID: "doc-1", Status: entities.StatusUpcoming}
	doctor := entities.User{ID: "doc-1", Name: "Dr. Nair", UserType: entities.UserDoctor, Appointments: []entities.Appointment{apt}}
	patient := entities.User{ID: "pat-1", Name: "Asha", UserType: entities.UserPatient, Appointments: []entities.Appointment{apt}}
	users := []entities.User{doctor, patient}

	t.Run("patient finds doctor", func(t *testing.T) {
		p, err := ResolveParticipants(patient, users, "apt-1")
		require.NoError(t, err)
		require.NotNil(t, p.Other)
		assert.Equal(t, "doc-1", p.Other.ID)
	})

	t.Run("doctor finds patient", func(t *testing.T) {
		p, err := ResolveParticipants(doctor, users, "apt-1")
		require.NoError(t, err)
		require.NotNil(t, p.Other)
		assert.Equal(t, "pat-1", p.Other.ID)
		assert.Equal(t, "apt-1", p.Appointment.ID)
	})

	t.Run("patient with removed doctor", func(t *testing.T) {
		p, err := ResolveParticipants(patient, []entities.User{patient}, "apt-1")
		require.NoError(t, err)
		assert.Nil(t, p.Other)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		_, err := ResolveParticipants(doctor, users, "apt-9")
		assert.ErrorIs(t, err, ErrAppointmentNotFound)

		_, err = ResolveParticipants(patient, users, "apt-9")
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewSimulatedRegistry(NewHub())

	c, err := r.Start(ctx, "apt-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count())

	got, err := r.Get(c.ID())
	require.NoError(t, err)
	assert.Same(t, c, got)

	info, err := r.End(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, StateEnded, info.State)
	assert.Equal(t, 0, r.Count())

	_, err = r.End(ctx, c.ID())
	assert.ErrorIs(t, err, ErrCallNotFound)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrCallNotFound)
}

func TestRegistryEndAll(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	r := NewSimulatedRegistry(hub)

	_, err := r.Start(ctx, "apt-1", "doc-1")
	require.NoError(t, err)
	_, err = r.Start(ctx, "apt-1", "pat-1")
	require.NoError(t, err)

	r.EndAll(ctx)
	assert.Equal(t, 0, r.Count())
	assert.Equal(t, 0, hub.Participants(RoomID("apt-1")))
}
