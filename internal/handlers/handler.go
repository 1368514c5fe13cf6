package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"clinic-app-server/internal/audit"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
)

// Publisher receives mutations after they committed.
type Publisher interface {
	Publish(m audit.Mutation)
}

// publish reports the request's mutation to the activity log. name is the
// display name of the affected entity when the handler knows it.
func publish(c *gin.Context, p Publisher, name string) {
	if p == nil {
		return
	}

	params := make(map[string]string, len(c.Params))
	for _, param := range c.Params {
		params[param.Key] = param.Value
	}

	// The body was cached by BindAndValidate; requests without one leave it nil.
	var body map[string]any
	_ = c.ShouldBindBodyWith(&body, binding.JSON)

	m := audit.Mutation{
		Method: c.Request.Method,
		Route:  c.FullPath(),
		Path:   c.Request.URL.Path,
		Params: params,
		Body:   body,
		Name:   name,
	}
	if actor, ok := middleware.ActorFromContext(c); ok {
		m.Actor = &actor
	}
	p.Publish(m)
}

// canManage reports whether the actor is an admin or the account id itself.
func canManage(actor models.Actor, role models.Role, id string) bool {
	return actor.Role == models.RoleAdmin || (actor.Role == role && actor.ID == id)
}
