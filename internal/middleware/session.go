package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const sessionKey = "session"

// Sessions loads the visitor session before the handler and saves it after.
func Sessions(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			log.Printf("Error loading session: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not load session",
				"error":   err.Error(),
			})
		}
		c.Locals(sessionKey, sess)
		err = c.Next()
		if saveErr := sess.Save(); saveErr != nil {
			log.Printf("Error saving session: %v", saveErr)
		}
		return err
	}
}

// Session returns the visitor session, or nil outside Sessions.
func Session(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(sessionKey).(*session.Session)
	return sess
}
