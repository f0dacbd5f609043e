package dashboard

// View names a screen of the back office.
type View string

const (
	ViewDashboard   View = "dashboard"
	ViewSolicitudes View = "solicitudes"
	ViewDetails     View = "details"
	ViewPhotos      View = "photos"
)

// Router tracks the open view.
type Router struct {
	current View
}

// NewRouter starts on the dashboard.
func NewRouter() *Router {
	return &Router{current: ViewDashboard}
}

// Current returns the open view.
func (r *Router) Current() View { return r.current }

// Navigate opens the named view; unknown names open the dashboard. reload is
// true when the list has to be fetched again.
func (r *Router) Navigate(name string) (v View, reload bool) {
	switch View(name) {
	case ViewDashboard, ViewSolicitudes, ViewDetails, ViewPhotos:
		v = View(name)
	default:
		v = ViewDashboard
	}
	r.current = v
	return v, v == ViewSolicitudes
}
