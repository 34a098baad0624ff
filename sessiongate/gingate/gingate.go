// Package gingate mounts a sessiongate.Gate on gin routers.
package gingate

import (
	"github.com/gin-gonic/gin"

	"github.com/alexlup06-authgate/sessiongate-go/sessiongate"
)

// UserKey is the gin context key holding the resolved *sessiongate.User.
const UserKey = "sessiongate.user"

// Middleware returns a gin middleware making the same decision as
// Gate.Middleware. Terminal responses and onboarding redirects abort the
// chain; on pass-through the user is stored under UserKey and in the request
// context.
func Middleware(g *sessiongate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Applies(c.Request) {
			c.Next()
			return
		}

		d, err := g.Decide(c.Request)
		if err != nil {
			_ = c.Error(err)
			g.Fail(c.Writer, c.Request, err)
			c.Abort()
			return
		}

		req, ok := g.Apply(c.Writer, c.Request, d)
		if !ok {
			c.Abort()
			return
		}

		c.Request = req
		if d.Session.User != nil {
			c.Set(UserKey, d.Session.User)
		}
		c.Next()
	}
}

// User returns the user stored by Middleware.
func User(c *gin.Context) (*sessiongate.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*sessiongate.User)
	return u, ok && u != nil
}
