package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// The simulator drives a full workshop day against a running API instance:
// it registers one user per role, creates vehicles, raises driver requests,
// converts them into work orders and walks each order through its lifecycle.

var plates = []string{"AB1234", "CD5678", "EF9012", "GH3456", "JK7890", "LM2345"}

var problems = []string{
	"ruido motor",
	"frenos gastados",
	"pierde aceite",
	"no arranca en frío",
	"luces intermitentes fallan",
	"vibración en el volante",
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient(baseURL string) *client {
	return &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *client) do(method, path string, body interface{}, out interface{}) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (c *client) register(username, nombre, rol string) (*client, error) {
	body := map[string]string{
		"username": username,
		"email":    username + "@pepsifleet.test",
		"password": "simulador123",
		"nombre":   nombre,
		"rol":      rol,
	}
	var resp struct {
		Token string `json:"token"`
	}
	status, err := c.do(http.MethodPost, "/api/auth/register", body, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		// Already registered on a previous run; log in instead.
		login := map[string]string{"username": username, "password": "simulador123"}
		status, err = c.do(http.MethodPost, "/api/auth/login", login, &resp)
		if err != nil || status != http.StatusOK {
			return nil, fmt.Errorf("login %s failed with status %d: %v", username, status, err)
		}
	}

	user := newClient(c.baseURL)
	user.token = resp.Token
	log.WithFields(log.Fields{"username": username, "rol": rol}).Info("User session ready")
	return user, nil
}

func runOrderLifecycle(admin, chofer, planificador, supervisor, mecanico, guardia *client, patente string) error {
	// Driver raises a request.
	var solicitud struct {
		ID string `json:"id"`
	}
	problema := problems[rand.Intn(len(problems))]
	status, err := chofer.do(http.MethodPost, "/api/solicitudes",
		map[string]string{"patente": patente, "descripcionProblema": problema}, &solicitud)
	if err != nil || status != http.StatusCreated {
		return fmt.Errorf("create solicitud: status %d err %v", status, err)
	}
	log.WithFields(log.Fields{"solicitud": solicitud.ID, "patente": patente}).Info("Request raised")

	// Planner converts it into a work order.
	var converted struct {
		IDOTRelacionada string `json:"id_ot_relacionada"`
	}
	status, err = planificador.do(http.MethodPut, "/api/solicitudes",
		map[string]string{"id": solicitud.ID}, &converted)
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("convert solicitud: status %d err %v", status, err)
	}
	otID := converted.IDOTRelacionada
	log.WithFields(log.Fields{"orden": otID}).Info("Request converted")

	// Gate registers the physical entry.
	var registro struct {
		ID string `json:"id"`
	}
	status, err = guardia.do(http.MethodPost, "/api/registros-acceso",
		map[string]string{"patente": patente}, &registro)
	if err != nil || status != http.StatusCreated {
		return fmt.Errorf("registro acceso: status %d err %v", status, err)
	}

	// Supervisor assigns a mechanic.
	var mecPerfil struct {
		ID     string `json:"id"`
		Nombre string `json:"nombre"`
	}
	if _, err := mecanico.do(http.MethodGet, "/api/auth/perfil", nil, &mecPerfil); err != nil {
		return fmt.Errorf("mechanic profile: %v", err)
	}
	status, err = supervisor.do(http.MethodPut, "/api/ordenes-trabajo/"+otID, map[string]string{
		"accion":                 "asignarTarea",
		"mecanicoAsignadoId":     mecPerfil.ID,
		"mecanicoAsignadoNombre": mecPerfil.Nombre,
	}, nil)
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("asignar tarea: status %d err %v", status, err)
	}

	// Mechanic works the order to completion.
	for _, estado := range []string{"En Progreso", "Finalizado"} {
		status, err = mecanico.do(http.MethodPut, "/api/ordenes-trabajo/"+otID,
			map[string]string{"estado": estado}, nil)
		if err != nil || status != http.StatusOK {
			return fmt.Errorf("estado %s: status %d err %v", estado, status, err)
		}
	}

	// Admin closes it and the gate releases the vehicle.
	status, err = admin.do(http.MethodPut, "/api/ordenes-trabajo/"+otID,
		map[string]string{"accion": "cierreAdministrativo"}, nil)
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("cierre administrativo: status %d err %v", status, err)
	}

	status, err = guardia.do(http.MethodPut, "/api/control-salida",
		map[string]string{"id": registro.ID}, nil)
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("control salida: status %d err %v", status, err)
	}

	log.WithFields(log.Fields{"orden": otID, "patente": patente}).Info("Order lifecycle completed")
	return nil
}

func main() {
	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	anon := newClient(baseURL)

	admin, err := anon.register("sim-admin", "Admin Sim", "admin")
	if err != nil {
		log.WithError(err).Fatal("Failed to set up admin session")
	}
	chofer, err := anon.register("sim-chofer", "Carlos Chofer", "chofer")
	if err != nil {
		log.WithError(err).Fatal("Failed to set up driver session")
	}
	planificador, err := anon.register("sim-planificador", "Paula Planner", "planificador")
	if err != nil {
		log.WithError(err).Fatal("Failed to set up planner session")
	}
	supervisor, err := anon.register("sim-supervisor", "Sergio Supervisor", "supervisor")
	if err != nil {
		log.WithError(err).Fatal("Failed to set up supervisor session")
	}
	mecanico, err := anon.register("sim-mecanico", "Juan Mecánico", "mecanico")
	if err != nil {
		log.WithError(err).Fatal("Failed to set up mechanic session")
	}
	guardia, err := anon.register("sim-guardia", "Gloria Guardia", "guardia")
	if err != nil {
		log.WithError(err).Fatal("Failed to set up gate session")
	}

	for _, patente := range plates {
		status, err := admin.do(http.MethodPost, "/api/vehiculos", map[string]interface{}{
			"patente": patente,
			"marca":   "Mercedes-Benz",
			"modelo":  "Atego",
			"anio":    2020 + rand.Intn(5),
		}, nil)
		if err != nil || (status != http.StatusCreated && status != http.StatusConflict) {
			log.WithFields(log.Fields{"patente": patente, "status": status}).Warn("Vehicle creation skipped")
		}
	}

	for _, patente := range plates {
		if err := runOrderLifecycle(admin, chofer, planificador, supervisor, mecanico, guardia, patente); err != nil {
			log.WithError(err).WithField("patente", patente).Error("Lifecycle failed")
		}
		time.Sleep(500 * time.Millisecond)
	}
}
