package routes

import (
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/khalsa-property/backend/controllers"
	"github.com/khalsa-property/backend/filestore"
	"github.com/khalsa-property/backend/otp"
	"github.com/khalsa-property/backend/store"
	"github.com/khalsa-property/backend/utils"
)

func Routes(router *mux.Router, redisClient *redis.Client, fs filestore.Store, leads store.LeadStore, registry otp.Registry, mailer utils.EmailSender) {
	api := router.PathPrefix("/api").Subrouter()

	// Property routes
	properties := api.PathPrefix("/properties").Subrouter()
	properties.HandleFunc("/add", controllers.CreateProperty(redisClient, fs)).Methods("POST")
	properties.HandleFunc("", controllers.GetProperties(redisClient)).Methods("GET")
	properties.HandleFunc("/{slug}", controllers.GetPropertyBySlug()).Methods("GET")
	properties.HandleFunc("/{slug}", controllers.UpdateProperty(redisClient, fs)).Methods("PATCH")
	properties.HandleFunc("/{slug}", controllers.DeleteProperty(redisClient)).Methods("DELETE")

	// Blog routes; fixed paths must be registered before the slug catch-all
	blogs := api.PathPrefix("/blogs").Subrouter()
	blogs.HandleFunc("/add", controllers.AddBlog(fs)).Methods("POST")
	blogs.HandleFunc("/viewblog", controllers.ViewBlogs()).Methods("GET")
	blogs.HandleFunc("/related/{slug}", controllers.RelatedBlogs()).Methods("GET")
	blogs.HandleFunc("/{slug}", controllers.GetBlogBySlug()).Methods("GET")
	blogs.HandleFunc("/{slug}", controllers.UpdateBlog(fs)).Methods("PUT")
	blogs.HandleFunc("/{slug}", controllers.DeleteBlog()).Methods("DELETE")

	// Sell-submission routes
	sell := api.PathPrefix("/sell").Subrouter()
	sell.HandleFunc("/addsell", controllers.CreateSell(fs)).Methods("POST")
	sell.HandleFunc("/viewsell", controllers.GetSells()).Methods("GET")
	sell.HandleFunc("/{id}", controllers.GetSellByID()).Methods("GET")
	sell.HandleFunc("/{id}", controllers.UpdateSell(fs)).Methods("PATCH")
	sell.HandleFunc("/{id}", controllers.DeleteSell()).Methods("DELETE")

	// Enquiry routes
	enquire := api.PathPrefix("/enquire").Subrouter()
	enquire.HandleFunc("/add", controllers.AddEnquiry()).Methods("POST")
	enquire.HandleFunc("/view", controllers.GetEnquiries()).Methods("GET")

	// Lead capture + OTP verification
	leadRoutes := api.PathPrefix("/leads").Subrouter()
	leadRoutes.HandleFunc("/send-otp", controllers.SendOTP(leads, registry, mailer)).Methods("POST")
	leadRoutes.HandleFunc("/verify-otp", controllers.VerifyOTP(leads, registry, mailer)).Methods("POST")
	leadRoutes.HandleFunc("/all", controllers.GetLeads(leads)).Methods("GET")
}
